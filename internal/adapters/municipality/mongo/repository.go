package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"geodados/ms_municipios/internal/core/municipality"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "municipios"

// geoPoint is the stored GeoJSON representation of a municipality location.
// Coordinates are [longitude, latitude].
type geoPoint struct {
	Type        string     `bson:"type"`
	Coordinates [2]float64 `bson:"coordinates"`
}

type document struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	IBGECode int                `bson:"codigo_ibge"`
	Name     string             `bson:"nome"`
	Capital  bool               `bson:"capital"`
	UFCode   int                `bson:"codigo_uf"`
	Local    geoPoint           `bson:"local"`
}

type nearbyDocument struct {
	document `bson:",inline"`
	Distance float64 `bson:"distance"`
}

var sortFields = map[string]string{
	"id":          "_id",
	"codigo_ibge": "codigo_ibge",
	"nome":        "nome",
	"capital":     "capital",
	"codigo_uf":   "codigo_uf",
}

// Repository implements the municipality record store on MongoDB.
type Repository struct {
	coll *mongo.Collection
	log  *slog.Logger
}

// NewRepository creates the MongoDB adapter, ensuring the unique IBGE-code
// index and the 2dsphere index on the stored point.
func NewRepository(ctx context.Context, db *mongo.Database, log *slog.Logger) (*Repository, error) {
	coll := db.Collection(collectionName)

	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "codigo_ibge", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "local", Value: "2dsphere"}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap municipios indexes: %w", err)
	}

	return &Repository{coll: coll, log: log}, nil
}

func (r *Repository) List(ctx context.Context, q municipality.ListQuery) ([]municipality.Municipality, int, error) {
	filter := bson.M{}
	if q.Name != "" {
		filter["nome"] = primitive.Regex{Pattern: regexp.QuoteMeta(q.Name), Options: "i"}
	}

	field, ok := sortFields[q.Sort]
	if !ok {
		field = "nome"
	}
	direction := 1
	if q.Order == "desc" {
		direction = -1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: field, Value: direction}, {Key: "_id", Value: 1}}).
		SetSkip(int64(q.Offset)).
		SetLimit(int64(q.Limit))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list municípios: %w", err)
	}
	var docs []document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode municípios: %w", err)
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count municípios: %w", err)
	}

	items := make([]municipality.Municipality, 0, len(docs))
	for _, d := range docs {
		items = append(items, d.toEntity())
	}
	return items, int(total), nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*municipality.Municipality, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// A malformed identifier can never match a document.
		return nil, municipality.ErrNotFound
	}

	var doc document
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, municipality.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find município %s: %w", id, err)
	}

	m := doc.toEntity()
	return &m, nil
}

func (r *Repository) Create(ctx context.Context, m municipality.Municipality) (*municipality.Municipality, error) {
	res, err := r.coll.InsertOne(ctx, document{
		IBGECode: m.IBGECode,
		Name:     m.Name,
		Capital:  m.Capital,
		UFCode:   m.UFCode,
		Local:    geoPoint{Type: "Point", Coordinates: [2]float64{m.Longitude, m.Latitude}},
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, municipality.ErrDuplicateIBGECode
		}
		return nil, fmt.Errorf("insert município: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return r.FindByID(ctx, oid.Hex())
}

func (r *Repository) Update(ctx context.Context, id string, patch municipality.Patch) (*municipality.Municipality, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, municipality.ErrNotFound
	}
	if patch.IsZero() {
		return r.FindByID(ctx, id)
	}

	set := bson.M{}
	if patch.IBGECode != nil {
		set["codigo_ibge"] = *patch.IBGECode
	}
	if patch.Name != nil {
		set["nome"] = *patch.Name
	}
	if patch.Capital != nil {
		set["capital"] = *patch.Capital
	}
	if patch.UFCode != nil {
		set["codigo_uf"] = *patch.UFCode
	}
	if patch.Longitude != nil {
		set["local.coordinates.0"] = *patch.Longitude
	}
	if patch.Latitude != nil {
		set["local.coordinates.1"] = *patch.Latitude
	}

	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, municipality.ErrDuplicateIBGECode
		}
		return nil, fmt.Errorf("update município %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return nil, municipality.ErrNotFound
	}

	return r.FindByID(ctx, id)
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return municipality.ErrNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete município %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return municipality.ErrNotFound
	}
	return nil
}

// FindNearby evaluates the same great-circle formula as the domain inside an
// aggregation pipeline, so results match the other engines instead of the
// slightly different sphere $geoNear assumes. The acos argument is clamped
// with $min/$max.
func (r *Repository) FindNearby(ctx context.Context, q municipality.NearbyQuery) ([]municipality.Nearby, int, error) {
	docLat := bson.M{"$degreesToRadians": bson.M{"$arrayElemAt": bson.A{"$local.coordinates", 1}}}
	docLon := bson.M{"$degreesToRadians": bson.M{"$arrayElemAt": bson.A{"$local.coordinates", 0}}}
	qLat := bson.M{"$degreesToRadians": q.Latitude}
	qLon := bson.M{"$degreesToRadians": q.Longitude}

	acosArg := bson.M{"$add": bson.A{
		bson.M{"$multiply": bson.A{
			bson.M{"$cos": qLat},
			bson.M{"$cos": docLat},
			bson.M{"$cos": bson.M{"$subtract": bson.A{docLon, qLon}}},
		}},
		bson.M{"$multiply": bson.A{
			bson.M{"$sin": qLat},
			bson.M{"$sin": docLat},
		}},
	}}
	distance := bson.M{"$multiply": bson.A{
		municipality.EarthRadiusKm,
		bson.M{"$acos": bson.M{"$max": bson.A{-1.0, bson.M{"$min": bson.A{1.0, acosArg}}}}},
	}}

	pipeline := mongo.Pipeline{
		{{Key: "$addFields", Value: bson.M{"distance": distance}}},
		{{Key: "$match", Value: bson.M{"distance": bson.M{"$lte": q.RadiusKm}}}},
		{{Key: "$sort", Value: bson.D{{Key: "distance", Value: 1}, {Key: "_id", Value: 1}}}},
		{{Key: "$facet", Value: bson.M{
			"data": bson.A{
				bson.M{"$skip": q.Offset},
				bson.M{"$limit": q.Limit},
			},
			"total": bson.A{bson.M{"$count": "count"}},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, fmt.Errorf("nearby municípios: %w", err)
	}
	var out []struct {
		Data  []nearbyDocument `bson:"data"`
		Total []struct {
			Count int `bson:"count"`
		} `bson:"total"`
	}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, 0, fmt.Errorf("decode nearby municípios: %w", err)
	}
	if len(out) == 0 {
		return nil, 0, nil
	}

	items := make([]municipality.Nearby, 0, len(out[0].Data))
	for _, d := range out[0].Data {
		items = append(items, municipality.Nearby{
			Municipality: d.toEntity(),
			DistanceKm:   d.Distance,
		})
	}
	total := 0
	if len(out[0].Total) > 0 {
		total = out[0].Total[0].Count
	}
	return items, total, nil
}

func (d document) toEntity() municipality.Municipality {
	return municipality.Municipality{
		ID:        d.ID.Hex(),
		IBGECode:  d.IBGECode,
		Name:      d.Name,
		Capital:   d.Capital,
		UFCode:    d.UFCode,
		Longitude: d.Local.Coordinates[0],
		Latitude:  d.Local.Coordinates[1],
	}
}
