package capability

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNegotiate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if len(body) == 0 {
			t.Error("expected a non-empty request body")
		}
		w.Header().Set("Content-Type", "application/llsd+xml")
		fmt.Fprint(w, `<?xml version="1.0"?><llsd><map>
			<key>FetchInventory2</key><uri>http://example.test/inv</uri>
			<key>GetTexture</key><uri>http://example.test/tex</uri>
		</map></llsd>`)
	}))
	defer srv.Close()

	c := NewClient()
	if err := c.Negotiate(context.Background(), srv.URL, Names); err != nil {
		t.Fatalf("negotiate: %v", err)
	}
	if c.Caps["FetchInventory2"] != "http://example.test/inv" {
		t.Errorf("FetchInventory2 = %q", c.Caps["FetchInventory2"])
	}
	if c.Caps["GetTexture"] != "http://example.test/tex" {
		t.Errorf("GetTexture = %q", c.Caps["GetTexture"])
	}
}

func TestFetchInventoryRecursion(t *testing.T) {
	root := uuid.New()
	child := uuid.New()
	owner := uuid.New()
	item := uuid.New()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/llsd+xml")
		switch {
		case strings.Contains(string(body), root.String()):
			fmt.Fprintf(w, `<?xml version="1.0"?><llsd><map><key>folders</key><array>
				<map>
					<key>folder_id</key><uuid>%s</uuid>
					<key>owner_id</key><uuid>%s</uuid>
					<key>version</key><integer>1</integer>
					<key>descendents</key><integer>1</integer>
					<key>name</key><string>root</string>
					<key>items</key><array></array>
					<key>categories</key><array>
						<map><key>folder_id</key><uuid>%s</uuid><key>owner_id</key><uuid>%s</uuid></map>
					</array>
				</map>
			</array></map></llsd>`, root, owner, child, owner)
		case strings.Contains(string(body), child.String()):
			fmt.Fprintf(w, `<?xml version="1.0"?><llsd><map><key>folders</key><array>
				<map>
					<key>folder_id</key><uuid>%s</uuid>
					<key>owner_id</key><uuid>%s</uuid>
					<key>version</key><integer>1</integer>
					<key>descendents</key><integer>1</integer>
					<key>name</key><string>child</string>
					<key>items</key><array>
						<map><key>item_id</key><uuid>%s</uuid><key>name</key><string>widget</string></map>
					</array>
					<key>categories</key><array></array>
				</map>
			</array></map></llsd>`, child, owner, item)
		default:
			t.Errorf("unexpected request body: %s", body)
		}
	}))
	defer srv.Close()

	c := NewClient()
	c.Caps["FetchInventory2"] = srv.URL

	result, err := c.FetchInventory(context.Background(), root, owner)
	if err != nil {
		t.Fatalf("fetch inventory: %v", err)
	}
	if result.Folder.FolderID != root {
		t.Errorf("root folder id = %s, want %s", result.Folder.FolderID, root)
	}
	if len(result.Subs) != 1 {
		t.Fatalf("expected 1 subfolder, got %d", len(result.Subs))
	}
	if result.Subs[0].Folder.FolderID != child {
		t.Errorf("child folder id = %s, want %s", result.Subs[0].Folder.FolderID, child)
	}
	if len(result.Subs[0].Items) != 1 || result.Subs[0].Items[0].ItemID != item {
		t.Errorf("expected item %s in child folder, got %+v", item, result.Subs[0].Items)
	}
}

func TestFetchAssetKindSelection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("binary-mesh-bytes"))
	}))
	defer srv.Close()

	c := NewClient()
	c.Caps["GetMesh2"] = srv.URL

	asset, err := c.FetchAsset(context.Background(), "GetMesh2", "mesh", uuid.New())
	if err != nil {
		t.Fatalf("fetch asset: %v", err)
	}
	if asset.Kind != AssetMesh {
		t.Errorf("kind = %v, want AssetMesh", asset.Kind)
	}
	if string(asset.Data) != "binary-mesh-bytes" {
		t.Errorf("data = %q", asset.Data)
	}
}

func TestFetchAssetHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient()
	c.Caps["ViewerAsset"] = srv.URL
	_, err := c.FetchAsset(context.Background(), "ViewerAsset", "texture", uuid.New())
	if err == nil {
		t.Fatal("expected an error")
	}
	var httpErr *HTTPError
	if he, ok := err.(*HTTPError); ok {
		httpErr = he
	}
	if httpErr == nil {
		t.Fatalf("expected *HTTPError, got %T: %v", err, err)
	}
	if httpErr.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", httpErr.StatusCode)
	}
}
