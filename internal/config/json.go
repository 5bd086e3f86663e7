// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [ClientConfig] with JSON tags.
type StructuredJSONConfig struct {
	Profile string `json:"profile"`

	API struct {
		BaseURL        string   `json:"base_url"`
		URL            string   `json:"url"`
		Username       string   `json:"username"`
		Password       string   `json:"password"`
		Token          string   `json:"token"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"api,omitempty"`

	Search struct {
		PageSize int  `json:"page_size"`
		Progress bool `json:"progress"`
	} `json:"search,omitempty"`

	Storage struct {
		ProfilesDSN string `json:"profiles_dsn"`
	} `json:"storage,omitempty"`

	Mirror struct {
		Dir         string `json:"dir"`
		S3Bucket    string `json:"s3_bucket"`
		S3Prefix    string `json:"s3_prefix"`
		S3Region    string `json:"s3_region"`
		S3Endpoint  string `json:"s3_endpoint"`
		S3AccessKey string `json:"s3_access_key"`
		S3SecretKey string `json:"s3_secret_key"`
	} `json:"mirror,omitempty"`

	Log struct {
		File  string `json:"file"`
		Level string `json:"level"`
	} `json:"log,omitempty"`
}

func parseJSON(jsonFilePath string) (*ClientConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &ClientConfig{
		Profile: jsonCfg.Profile,
		API: API{
			BaseURL:        jsonCfg.API.BaseURL,
			URL:            jsonCfg.API.URL,
			Username:       jsonCfg.API.Username,
			Password:       jsonCfg.API.Password,
			Token:          jsonCfg.API.Token,
			RequestTimeout: time.Duration(jsonCfg.API.RequestTimeout),
		},
		Search: Search{
			PageSize: jsonCfg.Search.PageSize,
			Progress: jsonCfg.Search.Progress,
		},
		Storage: Storage{
			ProfilesDSN: jsonCfg.Storage.ProfilesDSN,
		},
		Mirror: Mirror{
			Dir:         jsonCfg.Mirror.Dir,
			S3Bucket:    jsonCfg.Mirror.S3Bucket,
			S3Prefix:    jsonCfg.Mirror.S3Prefix,
			S3Region:    jsonCfg.Mirror.S3Region,
			S3Endpoint:  jsonCfg.Mirror.S3Endpoint,
			S3AccessKey: jsonCfg.Mirror.S3AccessKey,
			S3SecretKey: jsonCfg.Mirror.S3SecretKey,
		},
		Log: Log{
			File:  jsonCfg.Log.File,
			Level: jsonCfg.Log.Level,
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling
// from strings like "1h", "30s" as well as plain nanosecond numbers.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
