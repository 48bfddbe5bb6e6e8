// Package consul implements kv.Store on the HashiCorp Consul KV store.
//
// Items are stored as msgpack encoded values below a configurable prefix:
//
//	<prefix>/<namespace segment>/.../=<escaped key>
//
// Consul limits values to 512KB, which bounds the size of a stored file.
package consul

import (
	"context"
	"errors"
	"strings"

	"github.com/hashicorp/consul/api"
	"github.com/mwantia/agentfs/kv"
)

const maxPutAttempts = 5

var ErrConflict = errors.New("kv: concurrent modification of consul key")

type ConsulStore struct {
	client *api.Client
	kv     *api.KV

	config *ConsulStoreConfig
}

// ConsulStoreConfig contains configuration options for the Consul store
type ConsulStoreConfig struct {
	// Address of the Consul server (default: "127.0.0.1:8500")
	Address string

	// Token for Consul ACL authentication (optional)
	Token string

	// Datacenter to use (optional)
	Datacenter string

	// Namespace for Consul Enterprise (optional)
	Namespace string

	// Prefix for all keys in Consul KV (default: "agentfs")
	Prefix string
}

func NewConsulStore(config *ConsulStoreConfig) (*ConsulStore, error) {
	if config == nil {
		config = &ConsulStoreConfig{}
	}

	if config.Address == "" {
		config.Address = "127.0.0.1:8500"
	}

	config.Prefix = strings.Trim(config.Prefix, "/")
	if config.Prefix == "" {
		config.Prefix = "agentfs"
	}

	clientConfig := api.DefaultConfig()
	clientConfig.Address = config.Address
	if config.Token != "" {
		clientConfig.Token = config.Token
	}
	if config.Datacenter != "" {
		clientConfig.Datacenter = config.Datacenter
	}
	if config.Namespace != "" {
		clientConfig.Namespace = config.Namespace
	}

	client, err := api.NewClient(clientConfig)
	if err != nil {
		return nil, err
	}

	return &ConsulStore{
		client: client,
		kv:     client.KV(),
		config: config,
	}, nil
}

func (cs *ConsulStore) Get(ctx context.Context, namespace []string, key string) (*kv.Item, error) {
	pair, _, err := cs.kv.Get(cs.buildKey(namespace, key), (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, err
	}

	if pair == nil {
		return nil, kv.ErrNotFound
	}

	return kv.Unmarshal(pair.Value)
}

func (cs *ConsulStore) Put(ctx context.Context, namespace []string, key string, value map[string]any) error {
	consulKey := cs.buildKey(namespace, key)

	for range maxPutAttempts {
		current, _, err := cs.kv.Get(consulKey, (&api.QueryOptions{}).WithContext(ctx))
		if err != nil {
			return err
		}

		var previous *kv.Item
		var index uint64
		if current != nil {
			index = current.ModifyIndex
			if previous, err = kv.Unmarshal(current.Value); err != nil {
				return err
			}
		}

		buf, err := kv.Marshal(kv.NewItem(namespace, key, value, previous))
		if err != nil {
			return err
		}

		// A zero ModifyIndex only succeeds if the key does not exist yet
		pair := &api.KVPair{
			Key:         consulKey,
			Value:       buf,
			ModifyIndex: index,
		}

		ok, _, err := cs.kv.CAS(pair, (&api.WriteOptions{}).WithContext(ctx))
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}

	return ErrConflict
}

func (cs *ConsulStore) Search(ctx context.Context, prefix []string, filter map[string]any, limit, offset int) ([]*kv.Item, error) {
	pairs, _, err := cs.kv.List(cs.buildPrefix(prefix), (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, err
	}

	items := make([]*kv.Item, 0, len(pairs))
	for _, pair := range pairs {
		item, err := kv.Unmarshal(pair.Value)
		if err != nil {
			return nil, err
		}

		if kv.HasNamespacePrefix(item.Namespace, prefix) && kv.MatchesFilter(item.Value, filter) {
			items = append(items, item)
		}
	}

	kv.SortItems(items)
	return kv.Paginate(items, limit, offset), nil
}

// Truncate removes every key below the configured prefix.
func (cs *ConsulStore) Truncate(ctx context.Context) error {
	_, err := cs.kv.DeleteTree(cs.config.Prefix+"/", (&api.WriteOptions{}).WithContext(ctx))
	return err
}

func (cs *ConsulStore) Close() error {
	// Nothing to clean up - Consul client is stateless
	return nil
}

func (cs *ConsulStore) buildPrefix(namespace []string) string {
	return kv.PathPrefix(cs.config.Prefix, namespace)
}

func (cs *ConsulStore) buildKey(namespace []string, key string) string {
	return kv.PathKey(cs.config.Prefix, namespace, key)
}
