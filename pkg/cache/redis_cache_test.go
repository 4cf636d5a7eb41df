package cache

import (
	"net"
	"testing"
	"time"

	"rentwheels-backend/internal/config"
	"rentwheels-backend/internal/models"
	"rentwheels-backend/pkg/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func setupTestCache(t *testing.T) (*miniredis.Miniredis, *RedisCacheManager) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	host, port, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)

	client := redis.NewClient(config.RedisConfig{
		Host:        host,
		Port:        port,
		DialTimeout: time.Second,
	})
	require.True(t, client.IsConnected())

	cfg := DefaultCacheConfig()
	cfg.KeyPrefix = "test:"
	cfg.TagPrefix = "test_tag:"

	return mr, NewRedisCacheManager(client, cfg)
}

func testVehicle(name, brand, fuelType string) *models.Vehicle {
	return &models.Vehicle{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Brand:        brand,
		ModelYear:    2022,
		FuelType:     fuelType,
		Transmission: models.TransmissionAutomatic,
		PricePerDay:  4500,
		Location:     "Nairobi",
		Available:    true,
	}
}

func TestRedisCacheManager_VehicleOperations(t *testing.T) {
	mr, manager := setupTestCache(t)
	defer mr.Close()
	defer manager.Close()

	vehicle := testVehicle("Corolla Cross", "Toyota", models.FuelHybrid)

	t.Run("SetVehicle", func(t *testing.T) {
		err := manager.SetVehicle(vehicle.ID.Hex(), vehicle, 30*time.Second)
		assert.NoError(t, err)
	})

	t.Run("GetVehicle", func(t *testing.T) {
		retrieved, err := manager.GetVehicle(vehicle.ID.Hex())
		assert.NoError(t, err)
		assert.NotNil(t, retrieved)
		assert.Equal(t, vehicle.Name, retrieved.Name)
		assert.Equal(t, vehicle.Brand, retrieved.Brand)
		assert.Equal(t, vehicle.PricePerDay, retrieved.PricePerDay)
	})

	t.Run("GetVehicle_NotFound", func(t *testing.T) {
		retrieved, err := manager.GetVehicle(primitive.NewObjectID().Hex())
		assert.NoError(t, err)
		assert.Nil(t, retrieved)
	})

	t.Run("InvalidateVehicle", func(t *testing.T) {
		err := manager.InvalidateVehicle(vehicle.ID.Hex())
		assert.NoError(t, err)

		retrieved, err := manager.GetVehicle(vehicle.ID.Hex())
		assert.NoError(t, err)
		assert.Nil(t, retrieved)
	})
}

func TestRedisCacheManager_TTLBehavior(t *testing.T) {
	mr, manager := setupTestCache(t)
	defer mr.Close()
	defer manager.Close()

	vehicle := testVehicle("Demio", "Mazda", models.FuelPetrol)

	t.Run("TTL_Expiration", func(t *testing.T) {
		err := manager.SetVehicle(vehicle.ID.Hex(), vehicle, 100*time.Millisecond)
		assert.NoError(t, err)

		retrieved, err := manager.GetVehicle(vehicle.ID.Hex())
		assert.NoError(t, err)
		assert.NotNil(t, retrieved)

		mr.FastForward(200 * time.Millisecond)

		retrieved, err = manager.GetVehicle(vehicle.ID.Hex())
		assert.NoError(t, err)
		assert.Nil(t, retrieved)
	})
}

func TestRedisCacheManager_TaggingSystem(t *testing.T) {
	mr, manager := setupTestCache(t)
	defer mr.Close()
	defer manager.Close()

	vehicles := []*models.Vehicle{
		testVehicle("Corolla", "Toyota", models.FuelPetrol),
		testVehicle("RAV4", "Toyota", models.FuelHybrid),
		testVehicle("CX-5", "Mazda", models.FuelDiesel),
	}

	t.Run("SetVehiclesWithTags", func(t *testing.T) {
		for _, vehicle := range vehicles {
			err := manager.SetVehicle(vehicle.ID.Hex(), vehicle, 5*time.Minute)
			assert.NoError(t, err)
		}
	})

	t.Run("InvalidateByBrandTag", func(t *testing.T) {
		err := manager.InvalidateByTag("brand:Toyota")
		assert.NoError(t, err)

		for _, vehicle := range vehicles[:2] {
			retrieved, err := manager.GetVehicle(vehicle.ID.Hex())
			assert.NoError(t, err)
			assert.Nil(t, retrieved)
		}

		// The Mazda is untouched.
		retrieved, err := manager.GetVehicle(vehicles[2].ID.Hex())
		assert.NoError(t, err)
		assert.NotNil(t, retrieved)
		assert.Equal(t, "Mazda", retrieved.Brand)
	})

	t.Run("InvalidateByFuelTag", func(t *testing.T) {
		diesel := testVehicle("Hilux", "Toyota", models.FuelDiesel)
		err := manager.SetVehicle(diesel.ID.Hex(), diesel, 5*time.Minute)
		assert.NoError(t, err)

		err = manager.InvalidateByTag("fuel:Diesel")
		assert.NoError(t, err)

		retrieved, err := manager.GetVehicle(diesel.ID.Hex())
		assert.NoError(t, err)
		assert.Nil(t, retrieved)
	})
}

func TestRedisCacheManager_VehicleListOperations(t *testing.T) {
	mr, manager := setupTestCache(t)
	defer mr.Close()
	defer manager.Close()

	vehicles := []*models.Vehicle{
		testVehicle("Swift", "Suzuki", models.FuelPetrol),
		testVehicle("Leaf", "Nissan", models.FuelElectric),
	}

	t.Run("SetVehicleList", func(t *testing.T) {
		err := manager.SetVehicleList("available_vehicles", vehicles, 2*time.Minute)
		assert.NoError(t, err)
	})

	t.Run("GetVehicleList", func(t *testing.T) {
		retrieved, err := manager.GetVehicleList("available_vehicles")
		assert.NoError(t, err)
		assert.Len(t, retrieved, 2)
		assert.Equal(t, vehicles[0].Name, retrieved[0].Name)
		assert.Equal(t, vehicles[1].Name, retrieved[1].Name)
	})

	t.Run("GetVehicleList_NotFound", func(t *testing.T) {
		retrieved, err := manager.GetVehicleList("nonexistent_list")
		assert.NoError(t, err)
		assert.Nil(t, retrieved)
	})

	t.Run("ListInvalidatedByMemberVehicle", func(t *testing.T) {
		// Invalidating a vehicle that appears in the list drops the list too.
		err := manager.InvalidateByTag("vehicle:" + vehicles[0].ID.Hex())
		assert.NoError(t, err)

		retrieved, err := manager.GetVehicleList("available_vehicles")
		assert.NoError(t, err)
		assert.Nil(t, retrieved)
	})
}

func TestRedisCacheManager_GenericOperations(t *testing.T) {
	mr, manager := setupTestCache(t)
	defer mr.Close()
	defer manager.Close()

	t.Run("SetAndGet", func(t *testing.T) {
		err := manager.Set("rating_abc", map[string]interface{}{"average": 4.5}, time.Minute)
		assert.NoError(t, err)

		var rating map[string]interface{}
		err = manager.Get("rating_abc", &rating)
		assert.NoError(t, err)
		assert.Equal(t, 4.5, rating["average"])
	})

	t.Run("Get_Miss", func(t *testing.T) {
		var value string
		err := manager.Get("missing_key", &value)
		assert.NoError(t, err)
		assert.Empty(t, value)
	})
}

func TestRedisCacheManager_Stats(t *testing.T) {
	mr, manager := setupTestCache(t)
	defer mr.Close()
	defer manager.Close()

	vehicle := testVehicle("Vitz", "Toyota", models.FuelPetrol)

	stats := manager.GetCacheStats()
	assert.Equal(t, int64(0), stats.TotalHits)
	assert.Equal(t, int64(0), stats.TotalMisses)

	// Miss first, then a hit.
	_, err := manager.GetVehicle(vehicle.ID.Hex())
	assert.NoError(t, err)

	stats = manager.GetCacheStats()
	assert.Equal(t, int64(1), stats.TotalMisses)
	assert.Equal(t, 1.0, stats.MissRate)

	err = manager.SetVehicle(vehicle.ID.Hex(), vehicle, time.Minute)
	assert.NoError(t, err)

	_, err = manager.GetVehicle(vehicle.ID.Hex())
	assert.NoError(t, err)

	stats = manager.GetCacheStats()
	assert.Equal(t, int64(1), stats.TotalHits)
	assert.Equal(t, int64(1), stats.TotalMisses)
	assert.Equal(t, 0.5, stats.HitRate)
	assert.Equal(t, 0.5, stats.MissRate)
}

func TestRedisCacheManager_HealthCheck(t *testing.T) {
	mr, manager := setupTestCache(t)
	defer manager.Close()

	t.Run("HealthCheck_Success", func(t *testing.T) {
		err := manager.HealthCheck()
		assert.NoError(t, err)
	})

	t.Run("HealthCheck_Failure", func(t *testing.T) {
		mr.Close()
		err := manager.HealthCheck()
		assert.Error(t, err)
	})
}
