// Package config resolves nested configuration documents into immutable,
// type-preserving [Config] values.
//
// A document is read from TOML, JSON or YAML, flattened into a map keyed by
// full paths (see package flatmap), optionally overridden from environment
// variables, and then has its ${dotted.path} references replaced before it is
// rebuilt into nested maps.
//
// # Basic Usage
//
//	cfg, err := config.Load("~/.myapp/config.toml", config.WithEnvPrefix("MYAPP"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	host, ok := cfg.Get("database.host")
//
// Several files can be layered, later files winning:
//
//	cfg, err := config.LoadFiles([]string{"defaults.toml", "production.toml"})
//
// # Environment Overrides
//
// With [WithEnvPrefix] every variable named PREFIX__section__key overrides the
// value at section.key. The prefix is matched case-insensitively and path
// segments are lowercased. Values are converted with [StringToType], so
// MYAPP__DEBUG=true yields a boolean and MYAPP__HOSTS="['a', 'b']" a list.
// Tests can inject the environment with [WithEnvironment].
//
// # References
//
// A string value may refer to other values:
//
//	[paths]
//	root = "/srv"
//	data = "${paths.root}/data"   # "/srv/data"
//	port = "${server.port}"       # keeps the referenced type, e.g. an int
//
// References can compute their own path from other references, as in
// "${servers.${active}.host}", and are also resolved inside string list
// elements. A missing reference becomes the empty string. A reference cycle
// leaves the values involved unresolved. Neither is an error.
//
// # Validation
//
// No key at any level may be one of the reserved accessor names returned by
// [ReservedNames]; such keys fail with [ErrStructuralCollision].
package config
