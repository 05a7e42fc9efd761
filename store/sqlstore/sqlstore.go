// Package sqlstore implements store.Store on top of gorm. SQLite (pure Go) is
// the default backend; PostgreSQL is selected with the "postgres" driver.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"food-storefront/geo"
	"food-storefront/models"
	"food-storefront/store"
)

type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

// Open connects to the database named by driver ("sqlite" or "postgres").
func Open(driver, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case "", "sqlite":
		if dsn == "" {
			dsn = "food_storefront.db"
		}
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", driver, err)
	}
	if driver != "postgres" {
		// one connection keeps an in-memory database alive and serializes writers
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return New(db), nil
}

// New wraps an existing gorm handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) Migrate(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.Restaurant{},
		&models.MenuItem{},
		&models.Order{},
	)
	if err != nil {
		return fmt.Errorf("sqlstore: migrate: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// translate maps driver errors onto the store sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key") {
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	}
	return err
}

func (s *Store) create(ctx context.Context, value any) error {
	return translate(s.db.WithContext(ctx).Create(value).Error)
}

func (s *Store) get(ctx context.Context, dest any, id string) error {
	return translate(s.db.WithContext(ctx).Where("id = ?", id).First(dest).Error)
}

// replace overwrites every column of an existing row.
func (s *Store) replace(ctx context.Context, model any, id string) error {
	res := s.db.WithContext(ctx).Model(model).Where("id = ?", id).Select("*").Updates(model)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) remove(ctx context.Context, model any, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(model)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func paginate(q *gorm.DB, p store.Page) *gorm.DB {
	if p.Limit > 0 {
		q = q.Limit(p.Limit).Offset(p.Skip())
	}
	return q
}

// jsonContains matches a JSON array column holding the given string.
func jsonContains(column string) string {
	return "CAST(" + column + " AS TEXT) LIKE ? ESCAPE '\\'"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func jsonElem(v string) string {
	return `%"` + likeEscaper.Replace(v) + `"%`
}

func like(v string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(v)) + "%"
}

// anyOf builds "(a OR b OR ...)" over one condition per value.
func anyOf(cond string, values []string, arg func(string) string) (string, []any) {
	parts := make([]string, len(values))
	args := make([]any, len(values))
	for i, v := range values {
		parts[i] = cond
		args[i] = arg(v)
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

// ── Users ────────────────────────────────────────────────────────

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return s.create(ctx, u)
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.get(ctx, &u, id); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&u).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u *models.User) error {
	return s.replace(ctx, u, u.ID)
}

func (s *Store) ListUsers(ctx context.Context, role models.UserRole) ([]models.User, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if role != "" {
		q = q.Where("role = ?", role)
	}
	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		return nil, translate(err)
	}
	return users, nil
}

// ── Restaurants ──────────────────────────────────────────────────

func (s *Store) CreateRestaurant(ctx context.Context, r *models.Restaurant) error {
	return s.create(ctx, r)
}

func (s *Store) GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	var r models.Restaurant
	if err := s.get(ctx, &r, id); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) UpdateRestaurant(ctx context.Context, r *models.Restaurant) error {
	return s.replace(ctx, r, r.ID)
}

func (s *Store) DeleteRestaurant(ctx context.Context, id string) error {
	return s.remove(ctx, &models.Restaurant{}, id)
}

var restaurantSortColumns = map[string]string{
	store.SortByRating:       "rating_average",
	store.SortByDeliveryTime: "delivery_info_estimated_time",
	store.SortByDeliveryFee:  "delivery_info_delivery_fee",
}

func (s *Store) ListRestaurants(ctx context.Context, f store.RestaurantFilter) ([]models.Restaurant, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Restaurant{})
	if !f.IncludeInactive {
		q = q.Where("is_active = ?", true)
	}
	if f.OwnerID != "" {
		q = q.Where("owner_id = ?", f.OwnerID)
	}
	if len(f.Cuisines) > 0 {
		cond, args := anyOf(jsonContains("cuisine"), f.Cuisines, jsonElem)
		q = q.Where(cond, args...)
	}
	if f.City != "" {
		q = q.Where("LOWER(address_city) LIKE ? ESCAPE '\\'", like(f.City))
	}
	if f.MinRating != nil {
		q = q.Where("rating_average >= ?", *f.MinRating)
	}
	if f.OpenOnly {
		q = q.Where("is_open = ?", true)
	}
	if f.Search != "" {
		term := like(f.Search)
		q = q.Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\' OR LOWER(CAST(cuisine AS TEXT)) LIKE ? ESCAPE '\\')", term, term, term)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	col, ok := restaurantSortColumns[f.SortBy]
	if !ok {
		col = "created_at"
	}
	dir := " ASC"
	if f.Descending {
		dir = " DESC"
	}

	var rs []models.Restaurant
	if err := paginate(q.Order(col+dir).Order("id"), f.Page).Find(&rs).Error; err != nil {
		return nil, 0, translate(err)
	}
	return rs, total, nil
}

func (s *Store) NearbyRestaurants(ctx context.Context, lat, lng, radiusKm float64) ([]models.Restaurant, error) {
	box := geo.BoundingBox(lat, lng, radiusKm)
	lngs := s.db.Where("address_coordinates_lng BETWEEN ? AND ?", box.Lng[0].Min, box.Lng[0].Max)
	for _, r := range box.Lng[1:] {
		lngs = lngs.Or("address_coordinates_lng BETWEEN ? AND ?", r.Min, r.Max)
	}
	var rs []models.Restaurant
	err := s.db.WithContext(ctx).
		Where("is_active = ? AND is_open = ?", true, true).
		Where("address_coordinates_lat BETWEEN ? AND ?", box.MinLat, box.MaxLat).
		Where(lngs).
		Find(&rs).Error
	if err != nil {
		return nil, translate(err)
	}
	return store.WithinRadius(rs, lat, lng, radiusKm), nil
}

func (s *Store) RestaurantIDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	ids := []string{}
	err := s.db.WithContext(ctx).Model(&models.Restaurant{}).
		Where("owner_id = ?", ownerID).Pluck("id", &ids).Error
	if err != nil {
		return nil, translate(err)
	}
	return ids, nil
}

// ── Menu items ───────────────────────────────────────────────────

func (s *Store) CreateMenuItem(ctx context.Context, m *models.MenuItem) error {
	return s.create(ctx, m)
}

func (s *Store) GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error) {
	var m models.MenuItem
	if err := s.get(ctx, &m, id); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) UpdateMenuItem(ctx context.Context, m *models.MenuItem) error {
	return s.replace(ctx, m, m.ID)
}

func (s *Store) DeleteMenuItem(ctx context.Context, id string) error {
	return s.remove(ctx, &models.MenuItem{}, id)
}

func (s *Store) ListMenuItems(ctx context.Context, f store.MenuItemFilter) ([]models.MenuItem, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.MenuItem{})
	if !f.IncludeUnavailable {
		q = q.Where("availability = ?", true)
	}
	if f.RestaurantID != "" {
		q = q.Where("restaurant_id = ?", f.RestaurantID)
	}
	if len(f.Categories) > 0 {
		q = q.Where("category IN ?", f.Categories)
	}
	if len(f.DietaryInfo) > 0 {
		cond, args := anyOf(jsonContains("dietary_info"), f.DietaryInfo, jsonElem)
		q = q.Where(cond, args...)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.Search != "" {
		term := like(f.Search)
		q = q.Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\' OR LOWER(CAST(ingredients AS TEXT)) LIKE ? ESCAPE '\\')", term, term, term)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	var items []models.MenuItem
	if err := paginate(q.Order("category ASC").Order("name ASC").Order("id"), f.Page).Find(&items).Error; err != nil {
		return nil, 0, translate(err)
	}
	return items, total, nil
}

// ── Orders ───────────────────────────────────────────────────────

func (s *Store) CreateOrder(ctx context.Context, o *models.Order) error {
	return s.create(ctx, o)
}

func (s *Store) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	if err := s.get(ctx, &o, id); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Store) UpdateOrder(ctx context.Context, o *models.Order) error {
	return s.replace(ctx, o, o.ID)
}

func (s *Store) ListOrders(ctx context.Context, f store.OrderFilter) ([]models.Order, int64, error) {
	if f.RestaurantIDs != nil && len(f.RestaurantIDs) == 0 {
		return []models.Order{}, 0, nil
	}
	q := s.db.WithContext(ctx).Model(&models.Order{})
	if f.CustomerID != "" {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if f.RestaurantIDs != nil {
		q = q.Where("restaurant_id IN ?", f.RestaurantIDs)
	}
	if f.DriverID != "" {
		q = q.Where("delivery_driver = ?", f.DriverID)
	}
	if f.UnassignedOnly {
		q = q.Where("(delivery_driver = '' OR delivery_driver IS NULL)")
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	var orders []models.Order
	if err := paginate(q.Order("created_at DESC").Order("id DESC"), f.Page).Find(&orders).Error; err != nil {
		return nil, 0, translate(err)
	}
	return orders, total, nil
}
