// Package config handles configuration loading for rpmanager.
//
// # Overview
//
// Configuration is loaded from a YAML file with environment variable
// expansion. The package provides validation and duration parsing.
//
// # Default Location
//
// The config path is given explicitly to Load. The rpmanager-agent binary
// resolves it from the RPMANAGER_CONFIG environment variable, else
// $XDG_CONFIG_HOME/rpmanager/config.yaml, else
// ~/.config/rpmanager/config.yaml (./config.yaml only when the home
// directory cannot be determined).
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  jwt_secret: "${RPMANAGER_JWT_SECRET}"
//
// Syntax: ${VAR_NAME}
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	providers:
//	  send_timeout: "5s"
//
// Supported units: ns, us, ms, s, m, h
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "0.0.0.0:8080"
//
// Authentication (empty jwt_secret disables the auth middleware):
//
//	auth:
//	  jwt_secret: "${RPMANAGER_JWT_SECRET}"
//
// Resource provider protocol timing:
//
//	providers:
//	  send_timeout: "5s"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Validation
//
// Load() validates:
//
//   - server.http_addr is present
//   - providers.send_timeout, if set, parses to a positive duration
//
// # Usage
//
//	cfg, err := config.Load("/etc/rpmanager/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
