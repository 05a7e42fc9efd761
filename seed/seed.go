// Package seed fills a store with fake users, restaurants and menus for
// local development.
package seed

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"

	"github.com/jaswdr/faker"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"

	"food-storefront/models"
	"food-storefront/store"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "password123"

type Options struct {
	Restaurants        int
	ItemsPerRestaurant int
	Customers          int
	Drivers            int
	// Seed makes the generated data reproducible.
	Seed int64
	// Center is the point restaurants are scattered around.
	Center     models.Coordinates
	RadiusKm   float64
	Progress   io.Writer
	BcryptCost int
}

func DefaultOptions() Options {
	return Options{
		Restaurants:        10,
		ItemsPerRestaurant: 8,
		Customers:          20,
		Drivers:            5,
		Seed:               42,
		Center:             models.Coordinates{Lat: 40.7128, Lng: -74.0060},
		RadiusKm:           8,
		Progress:           io.Discard,
		BcryptCost:         bcrypt.DefaultCost,
	}
}

// Result counts what was written.
type Result struct {
	Users       int
	Restaurants int
	MenuItems   int
	AdminEmail  string
}

type seeder struct {
	fake faker.Faker
	rnd  *rand.Rand
	opts Options
	hash string
}

func Run(ctx context.Context, s store.Store, opts Options) (*Result, error) {
	if opts.Progress == nil {
		opts.Progress = io.Discard
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), opts.BcryptCost)
	if err != nil {
		return nil, err
	}
	sd := &seeder{
		fake: faker.NewWithSeed(rand.NewSource(opts.Seed)),
		rnd:  rand.New(rand.NewSource(opts.Seed)),
		opts: opts,
		hash: string(hash),
	}

	total := 1 + opts.Customers + opts.Drivers + opts.Restaurants*(2+opts.ItemsPerRestaurant)
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(opts.Progress),
		progressbar.OptionSetDescription("seeding"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	defer bar.Finish()

	res := &Result{}
	admin := sd.user(models.RoleAdmin)
	admin.Email = "admin@storefront.local"
	if err := s.CreateUser(ctx, admin); err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}
	res.AdminEmail = admin.Email
	res.Users++
	_ = bar.Add(1)

	for _, group := range []struct {
		role models.UserRole
		n    int
	}{{models.RoleCustomer, opts.Customers}, {models.RoleDeliveryDriver, opts.Drivers}} {
		for i := 0; i < group.n; i++ {
			if err := s.CreateUser(ctx, sd.user(group.role)); err != nil {
				return nil, fmt.Errorf("seed %s: %w", group.role, err)
			}
			res.Users++
			_ = bar.Add(1)
		}
	}

	for i := 0; i < opts.Restaurants; i++ {
		owner := sd.user(models.RoleRestaurantOwner)
		if err := s.CreateUser(ctx, owner); err != nil {
			return nil, fmt.Errorf("seed owner: %w", err)
		}
		res.Users++
		_ = bar.Add(1)

		r := sd.restaurant(owner.ID)
		if err := s.CreateRestaurant(ctx, r); err != nil {
			return nil, fmt.Errorf("seed restaurant: %w", err)
		}
		res.Restaurants++
		_ = bar.Add(1)

		for j := 0; j < opts.ItemsPerRestaurant; j++ {
			if err := s.CreateMenuItem(ctx, sd.menuItem(r.ID)); err != nil {
				return nil, fmt.Errorf("seed menu item: %w", err)
			}
			res.MenuItems++
			_ = bar.Add(1)
		}
	}
	return res, nil
}

func (sd *seeder) user(role models.UserRole) *models.User {
	addr := sd.fake.Address()
	return &models.User{
		ID:           models.NewID(),
		Name:         sd.fake.Person().Name(),
		Email:        fmt.Sprintf("%s.%d@storefront.local", role, sd.rnd.Int63()),
		PasswordHash: sd.hash,
		Phone:        fmt.Sprintf("+1 555 %04d", sd.rnd.Intn(10000)),
		Role:         role,
		Address: models.Address{
			Street:  addr.StreetAddress(),
			City:    addr.City(),
			State:   addr.StateAbbr(),
			ZipCode: addr.PostCode(),
		},
		Preferences: models.Preferences{Cuisines: []string{}, DietaryRestrictions: []string{}, Notifications: true},
		IsActive:    true,
	}
}

// point scatters a coordinate uniformly in a square around the center.
func (sd *seeder) point() models.Coordinates {
	latRange := sd.opts.RadiusKm / 111.0
	lngRange := latRange / cosDeg(sd.opts.Center.Lat)
	return models.Coordinates{
		Lat: sd.opts.Center.Lat + (sd.rnd.Float64()*2-1)*latRange,
		Lng: sd.opts.Center.Lng + (sd.rnd.Float64()*2-1)*lngRange,
	}
}

func (sd *seeder) pick(from []string, min, max int) []string {
	n := min + sd.rnd.Intn(max-min+1)
	out := make([]string, 0, n)
	for _, i := range sd.rnd.Perm(len(from))[:n] {
		out = append(out, from[i])
	}
	return out
}

func (sd *seeder) restaurant(ownerID string) *models.Restaurant {
	addr := sd.fake.Address()
	day := models.DayHours{Open: "10:00", Close: "22:00", IsOpen: true}
	r := &models.Restaurant{
		ID:          models.NewID(),
		Name:        sd.fake.Company().Name(),
		Description: sd.fake.Lorem().Sentence(10),
		OwnerID:     ownerID,
		Cuisine:     datatypes.JSONSlice[string](sd.pick(models.Cuisines, 1, 3)),
		Address: models.Address{
			Street:      addr.StreetAddress(),
			City:        "New York",
			State:       "NY",
			ZipCode:     addr.PostCode(),
			Coordinates: sd.point(),
		},
		Contact: models.Contact{
			Phone: fmt.Sprintf("+1 555 %04d", sd.rnd.Intn(10000)),
			Email: sd.fake.Internet().Email(),
		},
		Rating: models.Rating{
			Average: float64(30+sd.rnd.Intn(21)) / 10,
			Count:   sd.rnd.Intn(500),
		},
		DeliveryInfo: models.DeliveryInfo{
			EstimatedTime:  15 + 5*sd.rnd.Intn(10),
			DeliveryFee:    float64(sd.rnd.Intn(600)) / 100,
			MinimumOrder:   float64(5 * sd.rnd.Intn(4)),
			DeliveryRadius: float64(3 + sd.rnd.Intn(8)),
		},
		OperatingHours: models.OperatingHours{
			Monday: day, Tuesday: day, Wednesday: day, Thursday: day,
			Friday: day, Saturday: day, Sunday: day,
		},
		IsActive: true,
		IsOpen:   sd.rnd.Float64() < 0.8,
		Features: datatypes.JSONSlice[string](sd.pick(models.RestaurantFeatures, 0, 2)),
	}
	r.ApplyDefaults()
	return r
}

func (sd *seeder) menuItem(restaurantID string) *models.MenuItem {
	m := &models.MenuItem{
		ID:              models.NewID(),
		Name:            sd.fake.Lorem().Word() + " " + sd.fake.Lorem().Word(),
		Description:     sd.fake.Lorem().Sentence(8),
		RestaurantID:    restaurantID,
		Category:        models.MenuCategories[sd.rnd.Intn(len(models.MenuCategories))],
		Price:           float64(300+sd.rnd.Intn(2200)) / 100,
		Allergens:       datatypes.JSONSlice[string](sd.pick(models.Allergens, 0, 2)),
		DietaryInfo:     datatypes.JSONSlice[string](sd.pick(models.DietaryTags, 0, 2)),
		SpiceLevel:      models.SpiceLevels[sd.rnd.Intn(len(models.SpiceLevels))],
		Availability:    sd.rnd.Float64() < 0.9,
		PreparationTime: 5 + 5*sd.rnd.Intn(8),
		IsPopular:       sd.rnd.Float64() < 0.2,
		Customizations: datatypes.JSONSlice[models.Customization]{
			{Name: "Size", Options: []models.CustomizationOption{
				{Name: "Regular", Price: 0}, {Name: "Large", Price: 2},
			}},
		},
	}
	m.ApplyDefaults()
	return m
}

func cosDeg(deg float64) float64 { return math.Cos(deg * math.Pi / 180) }
