// Package config provides configuration loading for the weather station daemon.
package config

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Devices []DeviceData `yaml:"devices" json:"devices"`
	Storage StorageData  `yaml:"storage,omitempty" json:"storage,omitempty"`
	REST    RESTData     `yaml:"rest,omitempty" json:"rest,omitempty"`
	LogFile string       `yaml:"log_file,omitempty" json:"log_file,omitempty"`
}

// DeviceData holds configuration specific to data collection devices
type DeviceData struct {
	Name    string `yaml:"name" json:"name"`
	Type    string `yaml:"type" json:"type,omitempty"` // "rtl433" or "sensehat"
	Enabled bool   `yaml:"enabled" json:"enabled"`

	// rtl433 devices: either a command to spawn or a serial device to read
	Command      string   `yaml:"command,omitempty" json:"command,omitempty"`
	Args         []string `yaml:"args,omitempty" json:"args,omitempty"`
	SerialDevice string   `yaml:"serial_device,omitempty" json:"serial_device,omitempty"`
	Baud         int      `yaml:"baud,omitempty" json:"baud,omitempty"`

	// sensehat devices
	SysfsPath        string `yaml:"sysfs_path,omitempty" json:"sysfs_path,omitempty"`
	PollIntervalSecs int    `yaml:"poll_interval_secs,omitempty" json:"poll_interval_secs,omitempty"`
}

// StorageData holds the configuration for various storage backends
type StorageData struct {
	SQLite      *SQLiteData      `yaml:"sqlite,omitempty" json:"sqlite,omitempty"`
	TimescaleDB *TimescaleDBData `yaml:"timescaledb,omitempty" json:"timescaledb,omitempty"`
}

// SQLiteData holds the configuration for the SQLite storage backend
type SQLiteData struct {
	Path string `yaml:"path" json:"path"`
}

// TimescaleDBData holds the configuration for the TimescaleDB storage backend
type TimescaleDBData struct {
	ConnectionString string `yaml:"connection_string" json:"connection_string"`
}

// RESTData holds the configuration for the REST server
type RESTData struct {
	ListenAddr string `yaml:"listen_addr,omitempty" json:"listen_addr,omitempty"`
	Port       int    `yaml:"port,omitempty" json:"port,omitempty"`
}
