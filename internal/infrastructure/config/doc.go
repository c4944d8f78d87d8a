// Package config loads fcsctl configuration.
//
// Values come from, in increasing priority: built-in defaults, a YAML file
// and FCS_* environment variables. Credentials (MQTT password, InfluxDB
// token, Redis password) are best passed through the environment.
//
// Usage:
//
//	cfg, err := config.Load(os.Getenv("FCS_CONFIG"))
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.FCS.Service)
package config
