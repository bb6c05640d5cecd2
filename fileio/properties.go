package fileio

import (
	"strconv"
	"time"
)

// Configuration keys understood by the bundled backends. The bag is a
// flat string-to-string mapping passed through to backend constructors
// unmodified; keys a backend does not know are ignored by it.
const (
	// Generic client credentials, used when a store-specific key is absent.
	ClientRegion          = "client.region"
	ClientAccessKeyID     = "client.access-key-id"
	ClientSecretAccessKey = "client.secret-access-key"
	ClientSessionToken    = "client.session-token"

	S3Endpoint        = "s3.endpoint"
	S3Region          = "s3.region"
	S3AccessKeyID     = "s3.access-key-id"
	S3SecretAccessKey = "s3.secret-access-key"
	S3SessionToken    = "s3.session-token"
	S3ProxyURI        = "s3.proxy-uri"
	S3ConnectTimeout  = "s3.connect-timeout"
	// Signer keys are carried for the delegated backend's signing flow;
	// the bundled clients sign requests with the SDK defaults.
	S3SignerURI       = "s3.signer.uri"
	S3SignerEndpoint  = "s3.signer.endpoint"
	S3PathStyleAccess = "s3.path-style-access"

	HDFSHost           = "hdfs.host"
	HDFSPort           = "hdfs.port"
	HDFSUser           = "hdfs.user"
	HDFSKerberosTicket = "hdfs.kerberos-ticket"

	AdlsConnectionString = "adls.connection-string"
	AdlsAccountName      = "adls.account-name"
	AdlsAccountKey       = "adls.account-key"
	AdlsSasToken         = "adls.sas-token"
	AdlsTenantID         = "adls.tenant-id"
	AdlsClientID         = "adls.client-id"
	AdlsClientSecret     = "adls.client-secret"

	GCSToken           = "gcs.oauth2.token"
	GCSTokenExpiresAt  = "gcs.oauth2.token-expires-at"
	GCSProjectID       = "gcs.project-id"
	GCSAccess          = "gcs.access"
	GCSConsistency     = "gcs.consistency"
	GCSCacheTimeout    = "gcs.cache-timeout"
	GCSRequesterPays   = "gcs.requester-pays"
	GCSSessionKwargs   = "gcs.session-kwargs"
	GCSEndpoint        = "gcs.endpoint"
	GCSDefaultLocation = "gcs.default-bucket-location"
	GCSVersionAware    = "gcs.version-aware"
)

// S3SignerEndpointDefault is the request path used when s3.signer.uri
// is set but s3.signer.endpoint is not.
const S3SignerEndpointDefault = "v1/aws/s3/sign"

// Properties is the immutable configuration bag handed to backend
// constructors. Values are never mutated after construction.
type Properties map[string]string

// Get returns the value for key, or fallback when the key is absent or
// empty.
func (p Properties) Get(key, fallback string) string {
	if v, ok := p[key]; ok && v != "" {
		return v
	}
	return fallback
}

// GetBool returns the boolean value for key, or fallback when the key
// is absent or unparsable.
func (p Properties) GetBool(key string, fallback bool) bool {
	v, ok := p[key]
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// GetInt returns the integer value for key, or fallback when the key
// is absent or unparsable.
func (p Properties) GetInt(key string, fallback int) int {
	v, ok := p[key]
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// GetDuration returns the duration value for key, or fallback when the
// key is absent or unparsable. Bare numbers are read as seconds, so
// both "60" and "60s" configure a minute.
func (p Properties) GetDuration(key string, fallback time.Duration) time.Duration {
	v, ok := p[key]
	if !ok {
		return fallback
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
