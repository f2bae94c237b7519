package mongo

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fitstream/exerciseservice/internal/domain"
	"fitstream/exerciseservice/internal/metrics"
)

// Repository stores canonical exercise records, one document per merged
// record keyed by its id.
type Repository struct {
	collection *mongo.Collection
}

type exerciseDoc struct {
	ID             string             `bson:"_id"`
	Name           string             `bson:"name"`
	Description    string             `bson:"description,omitempty"`
	Category       string             `bson:"category,omitempty"`
	PrimaryMuscles []string           `bson:"primaryMuscles,omitempty"`
	Equipment      []string           `bson:"equipment,omitempty"`
	Difficulty     string             `bson:"difficulty,omitempty"`
	Media          []domain.MediaItem `bson:"media,omitempty"`
	Sources        []string           `bson:"sources,omitempty"`
	ProviderHint   string             `bson:"providerHint,omitempty"`
	UpdatedAt      int64              `bson:"updatedAt"`
}

// nameCollation makes name ordering case-insensitive, matching the
// in-process sort.
var nameCollation = &options.Collation{Locale: "en", Strength: 2}

func NewRepository(client *mongo.Client, dbName, collectionName string) *Repository {
	return &Repository{collection: client.Database(dbName).Collection(collectionName)}
}

func Connect(ctx context.Context, uri string, extra ...*options.ClientOptions) (*mongo.Client, error) {
	opts := append([]*options.ClientOptions{options.Client().ApplyURI(uri)}, extra...)
	client, err := mongo.Connect(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (r *Repository) EnsureIndexes(ctx context.Context) error {
	if r == nil || r.collection == nil {
		return nil
	}
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetCollation(nameCollation)},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "primaryMuscles", Value: 1}}},
		{Keys: bson.D{{Key: "difficulty", Value: 1}}},
		{Keys: bson.D{{Key: "sources", Value: 1}}},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, models)
	return err
}

// Count returns the number of documents matching filter.
func (r *Repository) Count(ctx context.Context, filter domain.StoreFilter) (int64, error) {
	started := time.Now()
	defer observe("count", started)
	return r.collection.CountDocuments(ctx, buildFilter(filter))
}

// Find returns one sorted window of matching documents.
func (r *Repository) Find(ctx context.Context, filter domain.StoreFilter, page domain.StorePage) ([]domain.Exercise, error) {
	started := time.Now()
	defer observe("find", started)

	opts := options.Aggregate().SetCollation(nameCollation)
	cursor, err := r.collection.Aggregate(ctx, buildPipeline(filter, page), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []exerciseDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return fromDocs(docs), nil
}

// UpsertMany replaces or inserts every record by id and returns how many
// documents were written.
func (r *Repository) UpsertMany(ctx context.Context, records []domain.Exercise) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}
	now := time.Now().UTC().Unix()
	models := make([]mongo.WriteModel, 0, len(records))
	for _, record := range records {
		if strings.TrimSpace(record.ID) == "" {
			continue
		}
		doc := toDoc(record, now)
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": doc.ID}).
			SetReplacement(doc).
			SetUpsert(true))
	}
	if len(models) == 0 {
		return 0, nil
	}

	started := time.Now()
	defer observe("upsert", started)
	res, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, err
	}
	return res.UpsertedCount + res.ModifiedCount, nil
}

func observe(operation string, started time.Time) {
	metrics.StoreQueryDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// buildFilter mirrors the in-process filter: text and category are
// case-insensitive substring matches, muscle is an exact case-insensitive
// element match.
func buildFilter(filter domain.StoreFilter) bson.M {
	clauses := make([]bson.M, 0, 6)

	if text := strings.TrimSpace(filter.Text); text != "" {
		pattern := containsPattern(text)
		clauses = append(clauses, bson.M{"$or": []bson.M{
			{"name": pattern},
			{"description": pattern},
			{"primaryMuscles": pattern},
			{"equipment": pattern},
			{"category": pattern},
		}})
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		clauses = append(clauses, bson.M{"category": containsPattern(category)})
	}
	if muscle := strings.TrimSpace(filter.Muscle); muscle != "" {
		clauses = append(clauses, bson.M{"primaryMuscles": bson.M{
			"$regex":   "^" + regexp.QuoteMeta(muscle) + "$",
			"$options": "i",
		}})
	}
	if equipment := strings.TrimSpace(filter.Equipment); equipment != "" {
		clauses = append(clauses, bson.M{"equipment": containsPattern(equipment)})
	}
	if difficulty := strings.TrimSpace(filter.Difficulty); difficulty != "" {
		clauses = append(clauses, bson.M{"difficulty": difficulty})
	}
	if providers := normalizeProviders(filter.Providers); len(providers) > 0 {
		clauses = append(clauses, bson.M{"$or": []bson.M{
			{"sources": bson.M{"$in": providers}},
			{"providerHint": bson.M{"$in": providers}},
		}})
	}

	switch len(clauses) {
	case 0:
		return bson.M{}
	case 1:
		return clauses[0]
	default:
		return bson.M{"$and": clauses}
	}
}

func containsPattern(value string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(value), "$options": "i"}
}

func normalizeProviders(providers []string) []string {
	out := make([]string, 0, len(providers))
	seen := make(map[string]struct{}, len(providers))
	for _, name := range providers {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// buildPipeline is $match, the computed sort fields the key needs, $sort,
// then the window. Every ordering ends on _id so pages are stable.
func buildPipeline(filter domain.StoreFilter, page domain.StorePage) mongo.Pipeline {
	pipeline := mongo.Pipeline{{{Key: "$match", Value: buildFilter(filter)}}}

	computed, order := sortStages(page.Sort, filter.Text)
	if len(computed) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$addFields", Value: computed}})
	}
	pipeline = append(pipeline, bson.D{{Key: "$sort", Value: order}})
	if page.Skip > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: page.Skip}})
	}
	if page.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: page.Limit}})
	}
	return pipeline
}

func sortStages(key domain.SortKey, text string) (bson.M, bson.D) {
	byID := bson.E{Key: "_id", Value: 1}
	switch key {
	case domain.SortNameAsc:
		return nil, bson.D{{Key: "name", Value: 1}, byID}
	case domain.SortNameDesc:
		return nil, bson.D{{Key: "name", Value: -1}, byID}
	case domain.SortDifficulty:
		return bson.M{"difficultyWeight": difficultyWeightExpr()}, bson.D{{Key: "difficultyWeight", Value: 1}, byID}
	case domain.SortMediaRich:
		media := bson.M{"$size": bson.M{"$ifNull": bson.A{"$media", bson.A{}}}}
		return bson.M{"mediaCount": media}, bson.D{{Key: "mediaCount", Value: -1}, byID}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, bson.D{byID}
	}
	pattern := regexp.QuoteMeta(text)
	computed := bson.M{
		"nameHit": regexMatchExpr("$name", pattern),
		"descHit": regexMatchExpr("$description", pattern),
	}
	return computed, bson.D{
		{Key: "nameHit", Value: -1},
		{Key: "descHit", Value: -1},
		{Key: "name", Value: 1},
		byID,
	}
}

func regexMatchExpr(field, pattern string) bson.M {
	return bson.M{"$regexMatch": bson.M{
		"input":   bson.M{"$ifNull": bson.A{field, ""}},
		"regex":   pattern,
		"options": "i",
	}}
}

// difficultyWeightExpr matches domain.Difficulty.Weight.
func difficultyWeightExpr() bson.M {
	branch := func(d domain.Difficulty) bson.M {
		return bson.M{
			"case": bson.M{"$eq": bson.A{"$difficulty", string(d)}},
			"then": d.Weight(),
		}
	}
	return bson.M{"$switch": bson.M{
		"branches": bson.A{
			branch(domain.DifficultyBeginner),
			branch(domain.DifficultyIntermediate),
			branch(domain.DifficultyAdvanced),
		},
		"default": domain.DifficultyUnknown.Weight(),
	}}
}

func toDoc(record domain.Exercise, updatedAt int64) exerciseDoc {
	return exerciseDoc{
		ID:             record.ID,
		Name:           strings.TrimSpace(record.Name),
		Description:    record.Description,
		Category:       strings.ToLower(strings.TrimSpace(record.Category)),
		PrimaryMuscles: record.PrimaryMuscles,
		Equipment:      record.Equipment,
		Difficulty:     string(record.Difficulty),
		Media:          record.Media,
		Sources:        normalizeProviders(record.Sources),
		ProviderHint:   strings.ToLower(strings.TrimSpace(record.ProviderHint)),
		UpdatedAt:      updatedAt,
	}
}

func fromDoc(doc exerciseDoc) domain.Exercise {
	return domain.Exercise{
		ID:             doc.ID,
		Name:           doc.Name,
		Description:    doc.Description,
		Category:       doc.Category,
		PrimaryMuscles: doc.PrimaryMuscles,
		Equipment:      doc.Equipment,
		Difficulty:     domain.Difficulty(doc.Difficulty),
		Media:          doc.Media,
		Sources:        doc.Sources,
		ProviderHint:   doc.ProviderHint,
	}
}

func fromDocs(docs []exerciseDoc) []domain.Exercise {
	records := make([]domain.Exercise, 0, len(docs))
	for _, doc := range docs {
		records = append(records, fromDoc(doc))
	}
	return records
}
