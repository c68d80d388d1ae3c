package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	mongoDatabase   = "apkwatch"
	mongoCollection = "version_records"
)

// mongoStore implements Store on MongoDB. The unique index on
// source_identifier enforces the one-record-per-identifier invariant at the
// database level as well.
type mongoStore struct {
	client *mongo.Client
	col    *mongo.Collection
}

func openMongo(ctx context.Context, uri string) (*mongoStore, error) {
	client, err := mongo.Connect(options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5 * time.Second).
		SetConnectTimeout(30 * time.Second))
	if err != nil {
		return nil, fmt.Errorf("state: mongo connect failed: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("state: mongo ping failed: %w", err)
	}

	col := client.Database(mongoDatabase).Collection(mongoCollection)
	_, err = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "source_identifier", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("state: creating source_identifier index: %w", err)
	}

	return &mongoStore{client: client, col: col}, nil
}

func (s *mongoStore) Load(ctx context.Context, sourceIdentifier string) (*VersionRecord, error) {
	var rec VersionRecord
	err := s.col.FindOne(ctx, bson.D{{Key: "source_identifier", Value: sourceIdentifier}}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("state: loading version record: %w", err)
	}
	return &rec, nil
}

func (s *mongoStore) Save(ctx context.Context, rec *VersionRecord) (*VersionRecord, error) {
	saved := *rec
	saved.UpdatedAt = time.Now()

	filter := bson.D{{Key: "source_identifier", Value: saved.SourceIdentifier}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "source_identifier", Value: saved.SourceIdentifier},
		{Key: "scraped_version", Value: saved.ScrapedVersion},
		{Key: "manifest_version_name", Value: saved.ManifestVersionName},
		{Key: "manifest_version_code", Value: saved.ManifestVersionCode},
		{Key: "filename", Value: saved.Filename},
		{Key: "downloaded_at", Value: saved.DownloadedAt},
		{Key: "updated_at", Value: saved.UpdatedAt},
	}}}

	_, err := s.col.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return nil, fmt.Errorf("state: saving version record: %w", err)
	}
	return &saved, nil
}

func (s *mongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
