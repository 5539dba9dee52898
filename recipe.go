package loader

import (
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cast"
	"go.ytsaurus.tech/library/go/core/xerrors"
)

// CatalogRecipe builds a Config pointed at the catalog from the test
// environment. Integration tests skip when the recipe is not supported.
func CatalogRecipe() (*Config, error) {
	endpoint, ok := os.LookupEnv("CATALOG_ENDPOINT")
	if !ok {
		return nil, xerrors.New("recipe not supported")
	}
	return &Config{
		Endpoint:  endpoint,
		Token:     os.Getenv("CATALOG_TOKEN"),
		Warehouse: os.Getenv("CATALOG_WAREHOUSE"),
		Namespace: "default",
		TableName: "ingest_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
	}, nil
}

// LocalRun reports whether tests that reach external services are enabled.
func LocalRun() bool {
	return cast.ToBool(os.Getenv("LOCAL"))
}
