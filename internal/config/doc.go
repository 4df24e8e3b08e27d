// Package config loads streamlat configuration. Default() is the built-in
// baseline; Load overlays a config file and STREAMLAT_* environment
// variables on top of it through viper, then validates the result.
//
// Example:
//
//	cfg, err := config.Load("") // search streamlat.{yaml,json,toml} in SearchPaths()
//	if err != nil {
//	    return err
//	}
//	// STREAMLAT_CONSUMER_ENDPOINT=http://10.0.0.5:50071 overrides consumer.endpoint
//	fmt.Println(cfg.Consumer.Endpoint)
package config
