package agentfs

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mwantia/agentfs/kv"
	"github.com/mwantia/agentfs/kv/badger"
	"github.com/mwantia/agentfs/kv/consul"
	"github.com/mwantia/agentfs/kv/postgres"
	"github.com/mwantia/agentfs/kv/s3"
	"github.com/mwantia/agentfs/kv/sqlite"
	"github.com/mwantia/agentfs/log"
	"github.com/mwantia/agentfs/mount/backend"
	"github.com/mwantia/agentfs/mount/backend/ephemeral"
	"github.com/mwantia/agentfs/mount/backend/local"
	"github.com/mwantia/agentfs/mount/backend/store"
)

var (
	ErrMalformedBackendAddress = errors.New("agentfs: malformed backend address defined")
	ErrUnknownBackendProtocol  = errors.New("agentfs: unknown backend protocol address")
)

// ParseBackendAddress creates the backend described by address. The backend
// is returned unopened.
func ParseBackendAddress(ctx context.Context, address string, logger *log.Logger) (backend.Backend, error) {
	if logger == nil {
		logger = log.Discard()
	}

	// Format address
	address = strings.TrimSpace(address)
	// Quick check to identify if we work with a possibly valid address
	if !strings.Contains(address, ":") {
		return nil, fmt.Errorf("failed to parse address '%s': %w", address, ErrMalformedBackendAddress)
	}

	// Special 'direct no address declarations'
	switch address {
	case ":ephemeral:":
		return ephemeral.NewEphemeralBackend(ephemeral.WithLogger(logger)), nil
	case ":memory:":
		return newStoreBackend(kv.NewMemoryStore(), nil, logger)
	}

	scheme, rest, found := strings.Cut(address, "://")
	if !found {
		return nil, fmt.Errorf("failed to parse address '%s': %w", address, ErrMalformedBackendAddress)
	}

	location, rawQuery, _ := strings.Cut(rest, "?")
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to parse query of '%s': %w", address, ErrMalformedBackendAddress)
	}

	switch strings.ToLower(scheme) {
	// local://<dir>?<virtual>&<max_file_size_mb>
	case "local", "direct":
		return parseLocalAddress(location, query, logger)
	// badger://<dir>?<in_memory>&<namespace>
	case "badger":
		return parseBadgerAddress(location, query, logger)
	// sqlite://<file>?<namespace>
	case "sqlite":
		return parseSQLiteAddress(ctx, location, query, logger)
	// postgres://<user>:<password>@<host>:<port>/<db>?<sslmode>&<namespace>
	case "postgres", "postgresql", "psql":
		return parsePostgresAddress(ctx, location, query, logger)
	// consul://<host>:<port>?<token>&<datacenter>&<prefix>&<namespace>
	case "consul":
		return parseConsulAddress(location, query, logger)
	// s3://<host>:<port>/<bucket>?<access_key>&<secret_key>&<ssl>&<prefix>&<namespace>
	case "s3", "minio":
		return parseS3Address(ctx, location, query, logger)
	}

	return nil, fmt.Errorf("failed to parse address '%s': %w", address, ErrUnknownBackendProtocol)
}

func parseLocalAddress(location string, query url.Values, logger *log.Logger) (backend.Backend, error) {
	if location == "" {
		return nil, fmt.Errorf("local address requires a root directory: %w", ErrMalformedBackendAddress)
	}

	opts := []local.LocalOption{local.WithLogger(logger)}

	virtual, err := parseBool(query, "virtual")
	if err != nil {
		return nil, err
	}
	if virtual {
		opts = append(opts, local.WithVirtualMode())
	}

	if value := query.Get("max_file_size_mb"); value != "" {
		size, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid max_file_size_mb '%s': %w", value, ErrMalformedBackendAddress)
		}
		opts = append(opts, local.WithMaxFileSizeMB(size))
	}

	return local.NewLocalBackend(location, opts...)
}

func parseBadgerAddress(location string, query url.Values, logger *log.Logger) (backend.Backend, error) {
	inMemory, err := parseBool(query, "in_memory")
	if err != nil {
		return nil, err
	}

	if location == "" && !inMemory {
		return nil, fmt.Errorf("badger address requires a directory: %w", ErrMalformedBackendAddress)
	}

	db, err := badger.NewBadgerStore(&badger.BadgerStoreConfig{
		Dir:      location,
		InMemory: inMemory,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	return newStoreBackend(db, query, logger)
}

func parseSQLiteAddress(ctx context.Context, location string, query url.Values, logger *log.Logger) (backend.Backend, error) {
	if location == "" {
		return nil, fmt.Errorf("sqlite address requires a database path: %w", ErrMalformedBackendAddress)
	}

	db, err := sqlite.NewSQLiteStore(ctx, location)
	if err != nil {
		return nil, err
	}

	return newStoreBackend(db, query, logger)
}

func parsePostgresAddress(ctx context.Context, location string, query url.Values, logger *log.Logger) (backend.Backend, error) {
	if location == "" {
		return nil, fmt.Errorf("postgres address requires a host: %w", ErrMalformedBackendAddress)
	}

	// Everything except our own parameters is handed to pgx
	params := url.Values{}
	for key, values := range query {
		if key != "namespace" {
			params[key] = values
		}
	}

	connString := "postgres://" + location
	if len(params) > 0 {
		connString += "?" + params.Encode()
	}

	db, err := postgres.NewPostgresStore(ctx, connString)
	if err != nil {
		return nil, err
	}

	return newStoreBackend(db, query, logger)
}

func parseConsulAddress(location string, query url.Values, logger *log.Logger) (backend.Backend, error) {
	db, err := consul.NewConsulStore(&consul.ConsulStoreConfig{
		Address:    location,
		Token:      query.Get("token"),
		Datacenter: query.Get("datacenter"),
		Namespace:  query.Get("consul_namespace"),
		Prefix:     query.Get("prefix"),
	})
	if err != nil {
		return nil, err
	}

	return newStoreBackend(db, query, logger)
}

func parseS3Address(ctx context.Context, location string, query url.Values, logger *log.Logger) (backend.Backend, error) {
	endpoint, bucket, _ := strings.Cut(location, "/")
	bucket = strings.Trim(bucket, "/")

	if endpoint == "" || bucket == "" {
		return nil, fmt.Errorf("s3 address requires '<endpoint>/<bucket>': %w", ErrMalformedBackendAddress)
	}

	useSSL, err := parseBool(query, "ssl")
	if err != nil {
		return nil, err
	}

	createBucket, err := parseBool(query, "create_bucket")
	if err != nil {
		return nil, err
	}

	db, err := s3.NewS3Store(ctx, &s3.S3StoreConfig{
		Endpoint:     endpoint,
		Bucket:       bucket,
		AccessKey:    query.Get("access_key"),
		SecretKey:    query.Get("secret_key"),
		UseSSL:       useSSL,
		Prefix:       query.Get("prefix"),
		CreateBucket: createBucket,
	})
	if err != nil {
		return nil, err
	}

	return newStoreBackend(db, query, logger)
}

func newStoreBackend(db kv.Store, query url.Values, logger *log.Logger) (backend.Backend, error) {
	opts := []store.StoreOption{store.WithLogger(logger)}

	if value := query.Get("namespace"); value != "" {
		opts = append(opts, store.WithNamespace(strings.Split(value, ",")...))
	}

	be, err := store.NewStoreBackend(db, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}

	return be, nil
}

func parseBool(query url.Values, key string) (bool, error) {
	value := query.Get(key)
	if value == "" {
		return false, nil
	}

	result, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s '%s': %w", key, value, ErrMalformedBackendAddress)
	}

	return result, nil
}
