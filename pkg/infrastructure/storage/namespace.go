package storage

import "storefront/pkg/domain/model"

const namespaceSeparator = ":"

// Namespaced scopes every key of base under one shopper session, so the
// cart of one session never sees the cart of another.
func Namespaced(base model.Storage, namespace string) model.Storage {
	return &namespaced{base: base, prefix: namespace + namespaceSeparator}
}

type namespaced struct {
	base   model.Storage
	prefix string
}

func (n *namespaced) Get(key string) ([]byte, error) {
	return n.base.Get(n.prefix + key)
}

func (n *namespaced) Set(key string, value []byte) error {
	return n.base.Set(n.prefix+key, value)
}

func (n *namespaced) Delete(key string) error {
	return n.base.Delete(n.prefix + key)
}
