// Package capability implements the per-session HTTP client for
// capability-gated traffic (spec §4.8): negotiating the capability URL
// table against the seed URL handed out by login, recursive LLSD-framed
// inventory folder fetches, and query-string asset fetches.
//
// Grounded on the teacher's pattern of a thin client struct wrapping
// *http.Client with an explicit timeout (mirrors gravwell's HTTP
// ingest/auth transport) plus this module's own codec/llsd package for
// the wire format, since no library in the example pack speaks LLSD.
package capability

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/benthic-mmo/metaverse-client-sub001/codec/llsd"
	"github.com/benthic-mmo/metaverse-client-sub001/internal/invdb"
)

// Timeout bounds a single capability HTTP call (spec §5: "capability HTTP
// <= 30s").
const Timeout = 30 * time.Second

// HTTPError distinguishes an HTTP-transport-level failure from an
// LLSD-parse failure, per spec §7 ("Capability failure ... HTTP-level and
// LLSD-parse-level distinguished").
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("capability: %s returned HTTP %d", e.URL, e.StatusCode)
}

// ParseError wraps an LLSD decode failure on a capability response body.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("capability: parsing %s: %v", e.URL, e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// Table is the session's capability-name -> URL mapping (spec §3
// "capability URL table (keyed by a closed set of capability names)").
type Table map[string]string

// Client issues capability-gated HTTP requests for one session.
type Client struct {
	HTTP *http.Client
	Caps Table
}

func NewClient() *Client {
	return &Client{
		HTTP: &http.Client{Timeout: Timeout},
		Caps: make(Table),
	}
}

// Names is the closed set of capability names this core requests at
// login, per spec §4.4 step 4.
var Names = []string{
	"FetchInventory2",
	"FetchInventoryDescendents2",
	"GetTexture",
	"GetMesh2",
	"ViewerAsset",
	"UpdateAgentInformation",
}

// Negotiate POSTs the desired-capability-name list to the seed URL and
// stores the returned name->url mapping on the client.
func (c *Client) Negotiate(ctx context.Context, seedURL string, names []string) error {
	items := make([]llsd.Value, len(names))
	for i, n := range names {
		items[i] = llsd.String(n)
	}
	body := llsd.EncodeXML(llsd.Array(items...))

	respBody, err := c.post(ctx, seedURL, body)
	if err != nil {
		return err
	}
	v, err := llsd.DecodeXML(respBody)
	if err != nil {
		return &ParseError{URL: seedURL, Err: err}
	}
	if v.Kind != llsd.KindMap {
		return &ParseError{URL: seedURL, Err: fmt.Errorf("expected map, got kind %d", v.Kind)}
	}
	for name, val := range v.Map {
		if val.Kind == llsd.KindURI {
			c.Caps[name] = val.URI
		} else if val.Kind == llsd.KindString {
			c.Caps[name] = val.Str
		}
	}
	return nil
}

func (c *Client) post(ctx context.Context, url string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("capability: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/llsd+xml")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("capability: %s: %w", url, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("capability: reading %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: url}
	}
	return data, nil
}

// InventoryResult is one folder's fetch result: its own metadata, its
// items, and the same for every descendent folder (recursed eagerly,
// spec §4.8 "Recurse into each subfolder").
type InventoryResult struct {
	Folder invdb.Folder
	Items  []invdb.Item
	Subs   []InventoryResult
}

// FetchInventory walks the folder tree rooted at folderID via the
// FetchInventory2 capability, per spec §4.8. It is idempotent: re-running
// it against an unchanged inventory produces the same result.
func (c *Client) FetchInventory(ctx context.Context, folderID, ownerID uuid.UUID) (InventoryResult, error) {
	capURL, ok := c.Caps["FetchInventory2"]
	if !ok {
		return InventoryResult{}, fmt.Errorf("capability: FetchInventory2 not negotiated")
	}
	return c.fetchInventoryFolder(ctx, capURL, folderID, ownerID)
}

func (c *Client) fetchInventoryFolder(ctx context.Context, capURL string, folderID, ownerID uuid.UUID) (InventoryResult, error) {
	reqBody := llsd.Map(map[string]llsd.Value{
		"folders": llsd.Array(llsd.Map(map[string]llsd.Value{
			"folder_id":     llsd.UUIDValue(folderID),
			"owner_id":      llsd.UUIDValue(ownerID),
			"fetch_folders": llsd.Boolean(true),
			"fetch_items":   llsd.Boolean(true),
			"sort_order":    llsd.Integer(0),
		})),
	})

	respBody, err := c.post(ctx, capURL, llsd.EncodeXML(reqBody))
	if err != nil {
		return InventoryResult{}, err
	}
	v, err := llsd.DecodeXML(respBody)
	if err != nil {
		return InventoryResult{}, &ParseError{URL: capURL, Err: err}
	}

	folders := v.Get("folders")
	if folders.Kind != llsd.KindArray || len(folders.Array) == 0 {
		return InventoryResult{}, fmt.Errorf("capability: no folder %s in response", folderID)
	}
	return c.parseFolder(ctx, capURL, folders.Array[0])
}

func (c *Client) parseFolder(ctx context.Context, capURL string, fv llsd.Value) (InventoryResult, error) {
	result := InventoryResult{
		Folder: invdb.Folder{
			FolderID:    fv.Get("folder_id").UUID,
			OwnerID:     fv.Get("owner_id").UUID,
			Version:     int32(fv.Get("version").Int),
			Descendents: int32(fv.Get("descendents").Int),
			Name:        fv.Get("name").Str,
			Type:        int32(fv.Get("type_default").Int),
		},
	}

	if items := fv.Get("items"); items.Kind == llsd.KindArray {
		for _, iv := range items.Array {
			result.Items = append(result.Items, parseItem(iv))
		}
	}

	if cats := fv.Get("categories"); cats.Kind == llsd.KindArray {
		for _, sub := range cats.Array {
			subFolderID := sub.Get("folder_id").UUID
			subOwnerID := sub.Get("owner_id").UUID
			if subFolderID == (uuid.UUID{}) {
				continue
			}
			subResult, err := c.fetchInventoryFolder(ctx, capURL, subFolderID, subOwnerID)
			if err != nil {
				return InventoryResult{}, err
			}
			result.Subs = append(result.Subs, subResult)
		}
	}
	return result, nil
}

func parseItem(iv llsd.Value) invdb.Item {
	return invdb.Item{
		ItemID:   iv.Get("item_id").UUID,
		FolderID: iv.Get("parent_id").UUID,
		OwnerID:  iv.Get("owner_id").UUID,
		AssetID:  iv.Get("asset_id").UUID,
		Name:     iv.Get("name").Str,
		Type:     int32(iv.Get("type").Int),
		InvType:  int32(iv.Get("inv_type").Int),
	}
}

// AssetKind is the decoded shape of an asset-fetch response body, per
// spec §4.8 ("parsed as either a SceneGroup (XML), an Item (newline-
// separated legacy format), or a Mesh (binary), selected by the type").
type AssetKind int

const (
	AssetSceneGroup AssetKind = iota
	AssetItem
	AssetMesh
)

// assetKindFor maps the lower-case asset-type token to the wire shape its
// response body takes.
func assetKindFor(assetType string) AssetKind {
	switch assetType {
	case "mesh":
		return AssetMesh
	case "object":
		return AssetSceneGroup
	default:
		return AssetItem
	}
}

// Asset is the raw result of an asset fetch: the bytes plus which shape
// the caller should parse them as.
type Asset struct {
	Kind AssetKind
	Data []byte
}

// FetchAsset GETs {capURL}?{type}_id={uuid}, per spec §4.8. assetType must
// be one of the closed lower-case tokens (texture, sound, object, mesh,
// bodypart, clothing, ...); objects.Type.String() produces these for the
// asset/inventory object types this core already enumerates.
func (c *Client) FetchAsset(ctx context.Context, capName, assetType string, id uuid.UUID) (Asset, error) {
	capURL, ok := c.Caps[capName]
	if !ok {
		return Asset{}, fmt.Errorf("capability: %s not negotiated", capName)
	}
	url := fmt.Sprintf("%s?%s_id=%s", capURL, strings.ToLower(assetType), id.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Asset{}, fmt.Errorf("capability: building request: %w", err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Asset{}, fmt.Errorf("capability: %s: %w", url, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Asset{}, fmt.Errorf("capability: reading %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		return Asset{}, &HTTPError{StatusCode: resp.StatusCode, URL: url}
	}
	return Asset{Kind: assetKindFor(assetType), Data: data}, nil
}
