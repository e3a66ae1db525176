package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
)

// ClientSource yields a Firestore client on demand. *Provider satisfies it.
type ClientSource interface {
	Client(ctx context.Context) (*firestore.Client, error)
}

// Document is a typed Firestore document with its update timestamp.
type Document[T any] struct {
	ID         string
	Data       T
	UpdateTime time.Time
}

// Collection offers typed get/set access to documents of one collection.
type Collection[T any] struct {
	source ClientSource
	name   string
}

// NewCollection binds a typed helper to the named collection.
func NewCollection[T any](source ClientSource, name string) *Collection[T] {
	return &Collection[T]{source: source, name: strings.TrimSpace(name)}
}

// Name returns the collection name.
func (c *Collection[T]) Name() string { return c.name }

// Get fetches and decodes a document. A missing document yields an *Error with IsNotFound.
func (c *Collection[T]) Get(ctx context.Context, id string) (Document[T], error) {
	ref, err := c.ref(ctx, id)
	if err != nil {
		return Document[T]{}, err
	}
	snap, err := ref.Get(ctx)
	if err != nil {
		return Document[T]{}, WrapError(c.op("get"), err)
	}
	var data T
	if err := snap.DataTo(&data); err != nil {
		return Document[T]{}, fmt.Errorf("firestore: decode %s/%s: %w", c.name, id, err)
	}
	return Document[T]{ID: snap.Ref.ID, Data: data, UpdateTime: snap.UpdateTime}, nil
}

// Set replaces the document with value.
func (c *Collection[T]) Set(ctx context.Context, id string, value T) (time.Time, error) {
	ref, err := c.ref(ctx, id)
	if err != nil {
		return time.Time{}, err
	}
	result, err := ref.Set(ctx, value)
	if err != nil {
		return time.Time{}, WrapError(c.op("set"), err)
	}
	return result.UpdateTime, nil
}

// Probe reads at most one document to confirm the backend answers.
func (c *Collection[T]) Probe(ctx context.Context) error {
	client, err := c.client(ctx)
	if err != nil {
		return err
	}
	iter := client.Collection(c.name).Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && !isIteratorDone(err) {
		return WrapError(c.op("probe"), err)
	}
	return nil
}

func (c *Collection[T]) client(ctx context.Context) (*firestore.Client, error) {
	if c == nil || c.source == nil {
		return nil, WrapError("collection", errors.New("firestore: client source is nil"))
	}
	if c.name == "" {
		return nil, WrapError("collection", errors.New("firestore: collection name is required"))
	}
	return c.source.Client(ctx)
}

func (c *Collection[T]) ref(ctx context.Context, id string) (*firestore.DocumentRef, error) {
	if strings.TrimSpace(id) == "" {
		return nil, WrapError(c.op("document"), errors.New("firestore: document id is required"))
	}
	client, err := c.client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Collection(c.name).Doc(id), nil
}

func (c *Collection[T]) op(action string) string {
	return c.name + "." + action
}
