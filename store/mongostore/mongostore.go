// Package mongostore implements store.Store on MongoDB. Documents keep the
// application-generated hex ids as their _id.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"food-storefront/geo"
	"food-storefront/models"
	"food-storefront/store"
)

const (
	colUsers       = "users"
	colRestaurants = "restaurants"
	colMenuItems   = "menuitems"
	colOrders      = "orders"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ store.Store = (*Store)(nil)

// Connect dials uri and pings the server before returning.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongostore: ping: %w", err)
	}
	if database == "" {
		database = "food_storefront"
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Migrate creates the indexes the queries rely on.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		colUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}}},
		},
		colRestaurants: {
			{Keys: bson.D{{Key: "owner", Value: 1}}},
			{Keys: bson.D{{Key: "address.coordinates.lat", Value: 1}, {Key: "address.coordinates.lng", Value: 1}}},
		},
		colMenuItems: {
			{Keys: bson.D{{Key: "restaurant", Value: 1}, {Key: "category", Value: 1}}},
		},
		colOrders: {
			{Keys: bson.D{{Key: "orderNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "customer", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "restaurant", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "delivery.driver", Value: 1}}},
		},
	}
	for col, idx := range indexes {
		if _, err := s.db.Collection(col).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("mongostore: indexes on %s: %w", col, err)
		}
	}
	return nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	}
	return err
}

// stamp sets the timestamps gorm would otherwise maintain.
func stamp(created, updated *time.Time) {
	now := time.Now().UTC()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

func (s *Store) insert(ctx context.Context, col string, doc any) error {
	_, err := s.db.Collection(col).InsertOne(ctx, doc)
	return translate(err)
}

func (s *Store) findByID(ctx context.Context, col, id string, dest any) error {
	return translate(s.db.Collection(col).FindOne(ctx, bson.M{"_id": id}).Decode(dest))
}

func (s *Store) replace(ctx context.Context, col, id string, doc any) error {
	res, err := s.db.Collection(col).ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) deleteByID(ctx context.Context, col, id string) error {
	res, err := s.db.Collection(col).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// findPage counts the filter's matches and decodes one page of them.
func findPage[T any](ctx context.Context, c *mongo.Collection, filter bson.M, sort bson.D, p store.Page) ([]T, int64, error) {
	total, err := c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, translate(err)
	}
	opts := options.Find().SetSort(sort)
	if p.Limit > 0 {
		opts.SetSkip(int64(p.Skip())).SetLimit(int64(p.Limit))
	}
	cur, err := c.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, translate(err)
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, translate(err)
	}
	return out, total, nil
}

func ciRegex(v string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(v), Options: "i"}
}

// ── Users ────────────────────────────────────────────────────────

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	stamp(&u.CreatedAt, &u.UpdatedAt)
	return s.insert(ctx, colUsers, u)
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.findByID(ctx, colUsers, id, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.Collection(colUsers).FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&u)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u *models.User) error {
	stamp(&u.CreatedAt, &u.UpdatedAt)
	return s.replace(ctx, colUsers, u.ID, u)
}

func (s *Store) ListUsers(ctx context.Context, role models.UserRole) ([]models.User, error) {
	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}
	users, _, err := findPage[models.User](ctx, s.db.Collection(colUsers), filter,
		bson.D{{Key: "createdAt", Value: -1}}, store.Page{})
	return users, err
}

// ── Restaurants ──────────────────────────────────────────────────

func (s *Store) CreateRestaurant(ctx context.Context, r *models.Restaurant) error {
	stamp(&r.CreatedAt, &r.UpdatedAt)
	return s.insert(ctx, colRestaurants, r)
}

func (s *Store) GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	var r models.Restaurant
	if err := s.findByID(ctx, colRestaurants, id, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) UpdateRestaurant(ctx context.Context, r *models.Restaurant) error {
	stamp(&r.CreatedAt, &r.UpdatedAt)
	return s.replace(ctx, colRestaurants, r.ID, r)
}

func (s *Store) DeleteRestaurant(ctx context.Context, id string) error {
	return s.deleteByID(ctx, colRestaurants, id)
}

var restaurantSortFields = map[string]string{
	store.SortByRating:       "rating.average",
	store.SortByDeliveryTime: "deliveryInfo.estimatedTime",
	store.SortByDeliveryFee:  "deliveryInfo.deliveryFee",
}

// RestaurantQuery translates a filter into a MongoDB query and sort.
func RestaurantQuery(f store.RestaurantFilter) (bson.M, bson.D) {
	filter := bson.M{}
	if !f.IncludeInactive {
		filter["isActive"] = true
	}
	if f.OwnerID != "" {
		filter["owner"] = f.OwnerID
	}
	if len(f.Cuisines) > 0 {
		filter["cuisine"] = bson.M{"$in": f.Cuisines}
	}
	if f.City != "" {
		filter["address.city"] = ciRegex(f.City)
	}
	if f.MinRating != nil {
		filter["rating.average"] = bson.M{"$gte": *f.MinRating}
	}
	if f.OpenOnly {
		filter["isOpen"] = true
	}
	if f.Search != "" {
		re := ciRegex(f.Search)
		filter["$or"] = bson.A{
			bson.M{"name": re},
			bson.M{"description": re},
			bson.M{"cuisine": re},
		}
	}

	field, ok := restaurantSortFields[f.SortBy]
	if !ok {
		field = "createdAt"
	}
	dir := 1
	if f.Descending {
		dir = -1
	}
	return filter, bson.D{{Key: field, Value: dir}, {Key: "_id", Value: 1}}
}

func (s *Store) ListRestaurants(ctx context.Context, f store.RestaurantFilter) ([]models.Restaurant, int64, error) {
	filter, sort := RestaurantQuery(f)
	return findPage[models.Restaurant](ctx, s.db.Collection(colRestaurants), filter, sort, f.Page)
}

func (s *Store) NearbyRestaurants(ctx context.Context, lat, lng, radiusKm float64) ([]models.Restaurant, error) {
	box := geo.BoundingBox(lat, lng, radiusKm)
	lngs := bson.A{}
	for _, r := range box.Lng {
		lngs = append(lngs, bson.M{"address.coordinates.lng": bson.M{"$gte": r.Min, "$lte": r.Max}})
	}
	filter := bson.M{
		"isActive":                true,
		"isOpen":                  true,
		"address.coordinates.lat": bson.M{"$gte": box.MinLat, "$lte": box.MaxLat},
		"$or":                     lngs,
	}
	rs, _, err := findPage[models.Restaurant](ctx, s.db.Collection(colRestaurants), filter,
		bson.D{{Key: "_id", Value: 1}}, store.Page{})
	if err != nil {
		return nil, err
	}
	return store.WithinRadius(rs, lat, lng, radiusKm), nil
}

func (s *Store) RestaurantIDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	raw, err := s.db.Collection(colRestaurants).Distinct(ctx, "_id", bson.M{"owner": ownerID})
	if err != nil {
		return nil, translate(err)
	}
	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ── Menu items ───────────────────────────────────────────────────

func (s *Store) CreateMenuItem(ctx context.Context, m *models.MenuItem) error {
	stamp(&m.CreatedAt, &m.UpdatedAt)
	return s.insert(ctx, colMenuItems, m)
}

func (s *Store) GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error) {
	var m models.MenuItem
	if err := s.findByID(ctx, colMenuItems, id, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) UpdateMenuItem(ctx context.Context, m *models.MenuItem) error {
	stamp(&m.CreatedAt, &m.UpdatedAt)
	return s.replace(ctx, colMenuItems, m.ID, m)
}

func (s *Store) DeleteMenuItem(ctx context.Context, id string) error {
	return s.deleteByID(ctx, colMenuItems, id)
}

// MenuItemQuery translates a filter into a MongoDB query.
func MenuItemQuery(f store.MenuItemFilter) bson.M {
	filter := bson.M{}
	if !f.IncludeUnavailable {
		filter["availability"] = true
	}
	if f.RestaurantID != "" {
		filter["restaurant"] = f.RestaurantID
	}
	if len(f.Categories) > 0 {
		filter["category"] = bson.M{"$in": f.Categories}
	}
	if len(f.DietaryInfo) > 0 {
		filter["dietaryInfo"] = bson.M{"$in": f.DietaryInfo}
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		filter["price"] = price
	}
	if f.Search != "" {
		re := ciRegex(f.Search)
		filter["$or"] = bson.A{
			bson.M{"name": re},
			bson.M{"description": re},
			bson.M{"ingredients": re},
		}
	}
	return filter
}

func (s *Store) ListMenuItems(ctx context.Context, f store.MenuItemFilter) ([]models.MenuItem, int64, error) {
	sort := bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}, {Key: "_id", Value: 1}}
	return findPage[models.MenuItem](ctx, s.db.Collection(colMenuItems), MenuItemQuery(f), sort, f.Page)
}

// ── Orders ───────────────────────────────────────────────────────

func (s *Store) CreateOrder(ctx context.Context, o *models.Order) error {
	stamp(&o.CreatedAt, &o.UpdatedAt)
	return s.insert(ctx, colOrders, o)
}

func (s *Store) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	if err := s.findByID(ctx, colOrders, id, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Store) UpdateOrder(ctx context.Context, o *models.Order) error {
	stamp(&o.CreatedAt, &o.UpdatedAt)
	return s.replace(ctx, colOrders, o.ID, o)
}

// OrderQuery translates a filter into a MongoDB query.
func OrderQuery(f store.OrderFilter) bson.M {
	filter := bson.M{}
	if f.CustomerID != "" {
		filter["customer"] = f.CustomerID
	}
	if f.RestaurantIDs != nil {
		filter["restaurant"] = bson.M{"$in": f.RestaurantIDs}
	}
	if f.DriverID != "" {
		filter["delivery.driver"] = f.DriverID
	}
	if f.UnassignedOnly {
		filter["delivery.driver"] = bson.M{"$in": bson.A{nil, ""}}
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	return filter
}

func (s *Store) ListOrders(ctx context.Context, f store.OrderFilter) ([]models.Order, int64, error) {
	sort := bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
	return findPage[models.Order](ctx, s.db.Collection(colOrders), OrderQuery(f), sort, f.Page)
}
