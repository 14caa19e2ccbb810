// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for prepchat.
//
// Configuration is TOML, with sensible defaults, environment variable
// overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - EndpointConfig: Where replies are requested from
//   - ChatConfig: Greeting, apology and input limits
//   - UIConfig, LogConfig: Presentation and logging settings
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (PREPCHAT_*)
//   - ~/.prepchat/config.toml
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := endpoint.NewClientWithConfig(&endpoint.ClientConfig{URL: cfg.Endpoint.URL})
package config
