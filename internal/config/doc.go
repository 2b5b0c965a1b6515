// Package config loads the dashboard configuration.
//
// # Sources
//
// Values are resolved in increasing order of precedence:
//
//  1. Defaults from Default()
//  2. A YAML file named by CNTRACKER_CONFIG_FILE, or the first of
//     config.yaml, configs/config.yaml, ../configs/config.yaml
//  3. Environment variables prefixed with CNTRACKER_
//
// Environment variables follow the struct layout:
//
//	CNTRACKER_SERVER_PORT=8080
//	CNTRACKER_REGISTER_PATH=/srv/registers
//	CNTRACKER_REGISTER_LAYOUT=shipping
//	CNTRACKER_CALENDAR_YEARS=2025,2026,2027
//	CNTRACKER_TELEMETRY_ENABLE_TRACING=true
//
// # Register layouts
//
// The built-in layouts are "soon" and "shipping". Other column layouts can
// be declared in the YAML file and selected with register.layout:
//
//	layouts:
//	  - name: legacy
//	    delivery_date_index: 10
//	    transport_index: 11
//	    amount_index: 12
//	    rule:
//	      kind: door_delivery
//	      marker: DOOR
//
// Layouts cannot be set through the environment.
package config
