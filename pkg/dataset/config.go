package dataset

import (
	"errors"
	"os"
)

// BucketParamKey is the configuration-service key consulted for the
// bucket name when Config.Bucket is not set.
const BucketParamKey = "/workbench/config/bucket"

// ErrNoBucket is returned by New when no bucket is configured and the
// parameter lookup yields nothing.
var ErrNoBucket = errors.New("no bucket configured")

// Params is the external key-value configuration service (e.g. a
// parameter store) consulted for defaults at construction time.
type Params interface {
	Get(key string) (string, bool)
}

// EnvParams resolves parameter keys against process environment
// variables, mapping the slash-separated key to an env-style name
// (BucketParamKey becomes WORKBENCH_CONFIG_BUCKET).
type EnvParams struct{}

func (EnvParams) Get(key string) (string, bool) {
	v := os.Getenv(envName(key))
	return v, v != ""
}

func envName(key string) string {
	out := make([]byte, 0, len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c == '/':
			if len(out) > 0 {
				out = append(out, '_')
			}
		case c >= 'a' && c <= 'z':
			out = append(out, c-'a'+'A')
		default:
			out = append(out, c)
		}
	}
	return string(out)
}

// Config carries the connection parameters for the dataset store.
type Config struct {
	// EndpointURL selects the backing store: http/https URLs use the S3
	// client; anything else (including empty) uses the local filesystem
	// store for dev mode.
	EndpointURL     string
	Region          string
	UseSSL          bool
	AccessKeyID     string
	SecretAccessKey string

	// Bucket holding all managed objects. When empty, New consults the
	// Params lookup under BucketParamKey.
	Bucket string

	// LocalRoot is the filesystem root for the dev-mode store.
	LocalRoot string
}

// ConfigFromEnv builds a Config from MINIO_* and TABLESTORE_* variables.
func ConfigFromEnv() Config {
	return Config{
		EndpointURL:     os.Getenv("MINIO_ENDPOINT"),
		Region:          os.Getenv("MINIO_REGION"),
		UseSSL:          os.Getenv("MINIO_USE_SSL") == "true",
		AccessKeyID:     os.Getenv("MINIO_ACCESS_KEY"),
		SecretAccessKey: os.Getenv("MINIO_SECRET_KEY"),
		Bucket:          os.Getenv("TABLESTORE_BUCKET"),
		LocalRoot:       os.Getenv("TABLESTORE_LOCAL_ROOT"),
	}
}
