// Package store defines the persistence contract for users, restaurants, menu
// items and orders. Implementations live in sqlstore and mongostore.
package store

import (
	"context"
	"errors"
	"sort"

	"food-storefront/geo"
	"food-storefront/models"
)

var (
	ErrNotFound  = errors.New("store: record not found")
	ErrDuplicate = errors.New("store: duplicate key")
)

// Page selects a window of a sorted result. Limit 0 means no limit.
type Page struct {
	Page  int
	Limit int
}

func (p Page) Skip() int {
	if p.Page < 1 || p.Limit <= 0 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Pages is the number of pages needed to show total records.
func Pages(total int64, limit int) int {
	if limit <= 0 {
		if total > 0 {
			return 1
		}
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

const (
	SortByRating       = "rating"
	SortByDeliveryTime = "deliveryTime"
	SortByDeliveryFee  = "deliveryFee"
)

type RestaurantFilter struct {
	Cuisines        []string
	City            string
	MinRating       *float64
	OpenOnly        bool
	Search          string
	OwnerID         string
	IncludeInactive bool
	SortBy          string
	Descending      bool
	Page
}

type MenuItemFilter struct {
	RestaurantID       string
	Categories         []string
	DietaryInfo        []string
	MinPrice           *float64
	MaxPrice           *float64
	Search             string
	IncludeUnavailable bool
	Page
}

type OrderFilter struct {
	CustomerID string
	// RestaurantIDs restricts to the given restaurants when non-nil; an empty
	// non-nil slice matches nothing.
	RestaurantIDs  []string
	DriverID       string
	Status         models.OrderStatus
	UnassignedOnly bool
	Page
}

type UserRepository interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
	ListUsers(ctx context.Context, role models.UserRole) ([]models.User, error)
}

type RestaurantRepository interface {
	CreateRestaurant(ctx context.Context, r *models.Restaurant) error
	GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error)
	UpdateRestaurant(ctx context.Context, r *models.Restaurant) error
	DeleteRestaurant(ctx context.Context, id string) error
	ListRestaurants(ctx context.Context, f RestaurantFilter) ([]models.Restaurant, int64, error)
	NearbyRestaurants(ctx context.Context, lat, lng, radiusKm float64) ([]models.Restaurant, error)
	RestaurantIDsByOwner(ctx context.Context, ownerID string) ([]string, error)
}

type MenuItemRepository interface {
	CreateMenuItem(ctx context.Context, m *models.MenuItem) error
	GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error)
	UpdateMenuItem(ctx context.Context, m *models.MenuItem) error
	DeleteMenuItem(ctx context.Context, id string) error
	ListMenuItems(ctx context.Context, f MenuItemFilter) ([]models.MenuItem, int64, error)
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, o *models.Order) error
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	UpdateOrder(ctx context.Context, o *models.Order) error
	ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, int64, error)
}

// Store is the full document store.
type Store interface {
	UserRepository
	RestaurantRepository
	MenuItemRepository
	OrderRepository

	Migrate(ctx context.Context) error
	Close() error
}

// WithinRadius keeps the restaurants whose coordinates lie within radiusKm of
// the point, nearest first.
func WithinRadius(rs []models.Restaurant, lat, lng, radiusKm float64) []models.Restaurant {
	type hit struct {
		r    models.Restaurant
		dist float64
	}
	hits := make([]hit, 0, len(rs))
	for _, r := range rs {
		c := r.Address.Coordinates
		if d := geo.Haversine(lat, lng, c.Lat, c.Lng); d <= radiusKm {
			hits = append(hits, hit{r, d})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })

	out := make([]models.Restaurant, len(hits))
	for i, h := range hits {
		out[i] = h.r
	}
	return out
}
