// Package config provides the session runtime's configuration file, loaded
// with gcfg the way the teacher's ingest/config package loads ingester
// config. It covers the grid login endpoint, the viewer fingerprint sent
// at login, the UI loopback addresses, throttle defaults, and the
// per-user data directory root.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gravwell/gcfg"
)

const (
	envLogLevel  = `BENTHIC_LOG_LEVEL`
	envUserDir   = `BENTHIC_USER_DATA_DIR`
	envGridURL   = `BENTHIC_GRID_LOGIN_URL`
	defaultLevel = `INFO`
)

var (
	ErrMissingGridURL    = errors.New("grid login URL missing")
	ErrMissingFirstName  = errors.New("first name missing")
	ErrMissingLastName   = errors.New("last name missing")
	ErrInvalidLogLevel   = errors.New("invalid log level")
	ErrInvalidUIAddress  = errors.New("invalid UI loopback address")
	ErrGlobalSectionNone = errors.New("global config section not found")
)

// Global mirrors the teacher's IngestConfig: one struct, loaded from an
// INI-style file, with a Verify pass that fills in defaults and validates.
type Global struct {
	Grid_Login_URL      string
	First_Name          string
	Last_Name           string
	Viewer_Fingerprint  string `gcfg:",omitempty"`
	Log_Level           string `gcfg:",omitempty"`
	Log_File            string `gcfg:",omitempty"`
	User_Data_Dir       string `gcfg:",omitempty"`
	UI_Listen_Address   string `gcfg:",omitempty"` // core reads UI requests here
	UI_Publish_Address  string `gcfg:",omitempty"` // core writes UI events here
	Throttle_Total_Kbps int    `gcfg:",omitempty"`
	Agent_UUID          string `gcfg:",omitempty"`
}

type cfgFile struct {
	Global Global
}

// Load reads and verifies a session config file at path.
func Load(path string) (*Global, error) {
	var cr cfgFile
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := gcfg.ReadStringInto(&cr, string(b)); err != nil {
		return nil, err
	}
	if err := cr.Global.Verify(); err != nil {
		return nil, err
	}
	return &cr.Global, nil
}

func (g *Global) loadDefaults() error {
	if g.Log_Level == `` {
		if v := os.Getenv(envLogLevel); v != `` {
			g.Log_Level = v
		} else {
			g.Log_Level = defaultLevel
		}
	}
	if g.User_Data_Dir == `` {
		if v := os.Getenv(envUserDir); v != `` {
			g.User_Data_Dir = v
		}
	}
	if g.Grid_Login_URL == `` {
		g.Grid_Login_URL = os.Getenv(envGridURL)
	}
	if g.UI_Listen_Address == `` {
		g.UI_Listen_Address = "127.0.0.1:0"
	}
	if g.UI_Publish_Address == `` {
		g.UI_Publish_Address = "127.0.0.1:0"
	}
	if g.Throttle_Total_Kbps <= 0 {
		g.Throttle_Total_Kbps = 1536 // matches the viewer's default agent throttle total
	}
	return nil
}

// Verify checks required fields, fills defaults, and ensures the user data
// directory exists, mirroring the teacher's IngestConfig.Verify.
func (g *Global) Verify() error {
	if err := g.loadDefaults(); err != nil {
		return err
	}
	if g.Grid_Login_URL == `` {
		return ErrMissingGridURL
	}
	if g.First_Name == `` {
		return ErrMissingFirstName
	}
	if g.Last_Name == `` {
		return ErrMissingLastName
	}
	g.Log_Level = strings.ToUpper(strings.TrimSpace(g.Log_Level))

	if g.Agent_UUID != `` {
		if _, err := uuid.Parse(g.Agent_UUID); err != nil {
			return fmt.Errorf("malformed agent UUID %v: %w", g.Agent_UUID, err)
		}
	}

	if g.User_Data_Dir != `` {
		if fi, err := os.Stat(g.User_Data_Dir); err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(g.User_Data_Dir, 0700); err != nil {
					return err
				}
			} else {
				return err
			}
		} else if !fi.IsDir() {
			return fmt.Errorf("user data dir %v is not a directory", g.User_Data_Dir)
		}
	}

	if g.Log_File != `` {
		logdir := filepath.Dir(g.Log_File)
		if fi, err := os.Stat(logdir); err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(logdir, 0700); err != nil {
					return err
				}
			} else {
				return err
			}
		} else if !fi.IsDir() {
			return fmt.Errorf("log directory %v is not a directory", logdir)
		}
	}
	return nil
}
