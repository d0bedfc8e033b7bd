package rag

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/indexer"
	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/indigobot/server/internal/agent/model"
	errx "github.com/indigobot/server/internal/core/error"
	logx "github.com/indigobot/server/pkg/logger"
)

const payloadContentKey = "content"

// pointsAPI is the subset of *qdrant.Client the store uses.
type pointsAPI interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
}

// QdrantStore is the document index: an eino Retriever and Indexer over one
// Qdrant collection. Documents are only ever added, never updated.
type QdrantStore struct {
	client     pointsAPI
	collection string
	embedder   embedding.Embedder
	topK       int
}

func NewQdrantClient(cfg model.VectorStoreConfig) (*qdrant.Client, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to qdrant: %w", err)
	}
	return client, nil
}

func NewQdrantStore(client pointsAPI, embedder embedding.Embedder, cfg model.VectorStoreConfig) *QdrantStore {
	topK := cfg.TopK
	if topK <= 0 {
		topK = 4
	}
	return &QdrantStore{client: client, collection: cfg.Collection, embedder: embedder, topK: topK}
}

// InitCollection creates the collection with cosine distance when missing.
func (s *QdrantStore) InitCollection(ctx context.Context, dim uint64) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return errx.WrapCollaborator("qdrant", err)
	}
	if exists {
		return nil
	}
	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dim,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return errx.WrapCollaborator("qdrant", fmt.Errorf("create collection %s: %w", s.collection, err))
	}
	logx.Info().Str("collection", s.collection).Uint64("dim", dim).Msg("created qdrant collection")
	return nil
}

// AddTexts stores each text as a new document carrying the matching metadata.
func (s *QdrantStore) AddTexts(ctx context.Context, texts []string, metadatas []map[string]any) error {
	docs := make([]*schema.Document, len(texts))
	for i, text := range texts {
		doc := &schema.Document{Content: text, MetaData: map[string]any{}}
		if i < len(metadatas) {
			for k, v := range metadatas[i] {
				doc.MetaData[k] = v
			}
		}
		docs[i] = doc
	}
	_, err := s.Store(ctx, docs)
	return err
}

func (s *QdrantStore) Store(ctx context.Context, docs []*schema.Document, _ ...indexer.Option) ([]string, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}
	vectors, err := s.embedder.EmbedStrings(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(docs) {
		return nil, errx.WrapCollaborator("embeddings", fmt.Errorf("got %d vectors for %d documents", len(vectors), len(docs)))
	}

	ids := make([]string, len(docs))
	points := make([]*qdrant.PointStruct, len(docs))
	for i, d := range docs {
		id := d.ID
		if id == "" {
			id = uuid.NewString()
		}
		ids[i] = id

		payload := map[string]any{payloadContentKey: d.Content}
		for k, v := range d.MetaData {
			payload[k] = v
		}
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(id),
			Vectors: qdrant.NewVectors(toFloat32(vectors[i])...),
			Payload: qdrant.NewValueMap(payload),
		}
	}

	wait := true
	if _, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points:         points,
	}); err != nil {
		return nil, errx.WrapCollaborator("qdrant", fmt.Errorf("upsert: %w", err))
	}
	logx.Debug().Str("collection", s.collection).Int("count", len(points)).Msg("documents indexed")
	return ids, nil
}

func (s *QdrantStore) Retrieve(ctx context.Context, query string, opts ...retriever.Option) ([]*schema.Document, error) {
	topK := s.topK
	options := retriever.GetCommonOptions(&retriever.Options{TopK: &topK}, opts...)
	if options.TopK != nil && *options.TopK > 0 {
		topK = *options.TopK
	}

	vectors, err := s.embedder.EmbedStrings(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, errx.WrapCollaborator("embeddings", fmt.Errorf("no query vector"))
	}

	limit := uint64(topK)
	req := &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(toFloat32(vectors[0])...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if options.ScoreThreshold != nil {
		threshold := float32(*options.ScoreThreshold)
		req.ScoreThreshold = &threshold
	}
	hits, err := s.client.Query(ctx, req)
	if err != nil {
		return nil, errx.WrapCollaborator("qdrant", fmt.Errorf("query: %w", err))
	}

	docs := make([]*schema.Document, 0, len(hits))
	for _, hit := range hits {
		doc := &schema.Document{MetaData: map[string]any{}}
		if hit.GetId() != nil {
			doc.ID = hit.GetId().GetUuid()
		}
		for k, v := range hit.GetPayload() {
			if k == payloadContentKey {
				doc.Content = v.GetStringValue()
				continue
			}
			doc.MetaData[k] = valueToAny(v)
		}
		docs = append(docs, doc.WithScore(float64(hit.GetScore())))
	}
	return docs, nil
}

func valueToAny(v *qdrant.Value) any {
	switch k := v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return k.StringValue
	case *qdrant.Value_IntegerValue:
		return k.IntegerValue
	case *qdrant.Value_DoubleValue:
		return k.DoubleValue
	case *qdrant.Value_BoolValue:
		return k.BoolValue
	case nil:
		return nil
	default:
		return v.String()
	}
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}

var (
	_ retriever.Retriever = (*QdrantStore)(nil)
	_ indexer.Indexer     = (*QdrantStore)(nil)
	_ model.DocumentIndex = (*QdrantStore)(nil)
	_ pointsAPI           = (*qdrant.Client)(nil)
)
