// Package mongodb provides the MongoDB client used by the optional audit
// sink.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	mongooptions "go.mongodb.org/mongo-driver/mongo/options"

	mongoopts "github.com/kart-io/calshare/pkg/options/mongo"
)

// Client wraps a mongo.Client scoped to one database.
type Client struct {
	client   *mongo.Client
	database *mongo.Database
	opts     *mongoopts.Options
}

// New connects to MongoDB and verifies the connection with a ping.
func New(ctx context.Context, opts *mongoopts.Options) (*Client, error) {
	if opts == nil || !opts.Enabled() {
		return nil, fmt.Errorf("mongodb uri not configured")
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mongodb options: %w", err)
	}

	clientOpts := mongooptions.Client().
		ApplyURI(opts.URI).
		SetConnectTimeout(opts.ConnectTimeout).
		SetMaxPoolSize(opts.MaxPoolSize)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &Client{
		client:   client,
		database: client.Database(opts.Database),
		opts:     opts,
	}, nil
}

// Collection returns the named collection in the configured database.
func (c *Client) Collection(name string) *mongo.Collection {
	return c.database.Collection(name)
}

// AuditCollection returns the configured audit collection.
func (c *Client) AuditCollection() *mongo.Collection {
	return c.Collection(c.opts.Collection)
}

// Ping verifies the connection.
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
