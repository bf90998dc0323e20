package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Listen   string   `koanf:"listen"`
	Frontend Frontend `koanf:"frontend"`
	Database Database `koanf:"db"`
	Recalc   Recalc   `koanf:"recalc"`
}

type Frontend struct {
	Enabled bool `koanf:"enabled"`
}

type Database struct {
	// Path to the SQLite database file.
	Path string `koanf:"path"`
}

type Recalc struct {
	// LockedEntryStatuses lists time entry statuses that recalculation must
	// never touch.
	LockedEntryStatuses []string `koanf:"lockedentrystatuses"`
	// LockedEstimateStatuses lists estimate statuses whose line items are
	// frozen for recalculation.
	LockedEstimateStatuses []string `koanf:"lockedestimatestatuses"`
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Listen: ":8282",
		Frontend: Frontend{
			Enabled: true,
		},
		Database: Database{
			Path: "hourglass.db",
		},
		Recalc: Recalc{
			LockedEntryStatuses:    []string{"submitted", "approved", "invoiced"},
			LockedEstimateStatuses: []string{"approved", "invoiced"},
		},
	}, "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "HOURGLASS_",
		TransformFunc: func(k, v string) (string, any) {
			// Transform the key.
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "HOURGLASS_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
