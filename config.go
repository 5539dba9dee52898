package loader

// Config is the resolved invocation of the tool. Exactly one source mode is
// in effect after Validate: a local directory, or an S3 bucket and prefix.
// LocalPath takes precedence when both are given.
type Config struct {
	LocalPath string
	Bucket    string
	Prefix    string
	Endpoint  string
	Token     string
	Warehouse string
	Namespace string
	TableName string
	Directory string
	ListOnly  bool
}

func (c *Config) Validate() error {
	if c.ListOnly {
		if c.Bucket == "" || c.Prefix == "" {
			return &ValidationError{
				Option: "list-only",
				Reason: "both --bucket and --prefix must be specified to list files",
			}
		}
		return nil
	}

	if c.LocalPath == "" && (c.Bucket == "" || c.Prefix == "") {
		return &ValidationError{
			Option: "local-path",
			Reason: "either --local-path or both --bucket and --prefix must be specified",
		}
	}

	for _, opt := range []struct {
		name  string
		value string
	}{
		{"endpoint", c.Endpoint},
		{"token", c.Token},
		{"warehouse", c.Warehouse},
		{"namespace", c.Namespace},
		{"table-name", c.TableName},
	} {
		if opt.value == "" {
			return &ValidationError{Option: opt.name, Reason: "must be specified to create the catalog table"}
		}
	}

	return nil
}
