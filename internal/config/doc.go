// Package config provides configuration loading for storagehub.
//
// Configuration comes from three layers, later layers winning:
// built-in defaults, an optional JSON or YAML file, and STORAGESYNC_*
// environment variables.
//
// # Configuration File Structure
//
//	addr: ":7070"
//	path: /ws
//	read_timeout: 60s
//	write_timeout: 10s
//	ping_interval: 25s
//	send_queue: 256
//	max_message_bytes: 1048576
//	metrics_namespace: storagesync
//	log_level: info
//	storage:
//	  bucket: app-prefs
//	  prefix: local/
//	  region: eu-west-1
//
// JSON files use the same keys.
//
// # Usage
//
//	cfg, err := config.Load("storagehub.yaml")
//	if err != nil {
//	    fmt.Fprint(os.Stderr, errors.FromError(err, "S102").Format())
//	    os.Exit(1)
//	}
//
//	fmt.Println("Listening on", cfg.Addr)
package config
