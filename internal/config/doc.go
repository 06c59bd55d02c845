// Package config loads and validates cfuaa configuration.
//
// Configuration comes from a single YAML file (default ./cfuaa.yaml, override
// with --config) layered on top of GetDefaultConfig, followed by environment
// overrides (CFUAA_CLIENT_ID, CFUAA_CLIENT_SECRET, CFUAA_UAA_URL,
// CFUAA_LOGIN_URL, CFUAA_API_URL, CFUAA_PUBLIC_URL).
//
//	uaa:
//	  clientId: jenkins
//	  uaaServerEndpoint: https://uaa.sys.example.com
//	  loginServerEndpoint: https://login.sys.example.com
//	  apiServerEndpoint: https://api.sys.example.com
//	  httpTimeout: 5s
//	server:
//	  port: 8080
//	  publicUrl: https://ci.example.com/
//	logging:
//	  level: info
//	  format: json
//
// Validation is explicit and happens once, at startup. Every problem is a
// *ConfigurationError; a validation pass returns all of them in a
// *ConfigurationErrorCollection, which unwraps to the individual errors.
package config
