package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"rentwheels-backend/internal/events"
	"rentwheels-backend/internal/models"
	"rentwheels-backend/internal/repository"
	"rentwheels-backend/pkg/cache"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VehicleService struct {
	vehicleRepo  *repository.VehicleRepository
	cacheManager cache.CacheManager
	cacheConfig  cache.CacheConfig
	publisher    events.Publisher
}

func NewVehicleService(vehicleRepo *repository.VehicleRepository) *VehicleService {
	return &VehicleService{
		vehicleRepo: vehicleRepo,
		cacheConfig: cache.DefaultCacheConfig(),
	}
}

// SetCacheManager allows setting the cache manager for catalog caching
func (s *VehicleService) SetCacheManager(cacheManager cache.CacheManager) {
	s.cacheManager = cacheManager
}

// SetCacheConfig allows setting custom cache configuration
func (s *VehicleService) SetCacheConfig(config cache.CacheConfig) {
	s.cacheConfig = config
}

// SetPublisher allows setting the event publisher for real-time updates
func (s *VehicleService) SetPublisher(publisher events.Publisher) {
	s.publisher = publisher
}

type CreateVehicleRequest struct {
	Name         string   `json:"name" validate:"required,min=1,max=100"`
	Brand        string   `json:"brand" validate:"required,min=1,max=100"`
	ModelYear    int      `json:"modelYear,omitempty" validate:"omitempty,min=1980,max=2030"`
	FuelType     string   `json:"fuelType" validate:"required,oneof=Petrol Diesel Electric Hybrid"`
	Transmission string   `json:"transmission" validate:"required,oneof=Automatic Manual"`
	PricePerDay  float64  `json:"pricePerDay" validate:"required,gt=0"`
	Location     string   `json:"location,omitempty"`
	Images       []string `json:"images,omitempty" validate:"omitempty,min=1"`
}

type UpdateVehicleRequest struct {
	Name         string   `json:"name,omitempty"`
	Brand        string   `json:"brand,omitempty"`
	ModelYear    int      `json:"modelYear,omitempty"`
	FuelType     string   `json:"fuelType,omitempty" validate:"omitempty,oneof=Petrol Diesel Electric Hybrid"`
	Transmission string   `json:"transmission,omitempty" validate:"omitempty,oneof=Automatic Manual"`
	PricePerDay  float64  `json:"pricePerDay,omitempty" validate:"omitempty,gt=0"`
	Location     string   `json:"location,omitempty"`
	Images       []string `json:"images,omitempty"`
	Available    *bool    `json:"available,omitempty"`
}

func (s *VehicleService) GetAllVehicles() ([]*models.Vehicle, error) {
	if s.cacheManager != nil {
		cachedVehicles, err := s.cacheManager.GetVehicleList("all_vehicles")
		if err == nil && cachedVehicles != nil {
			return cachedVehicles, nil
		}
		if err != nil {
			log.Printf("Cache error for GetAllVehicles: %v", err)
		}
	}

	vehicles, err := s.vehicleRepo.FindAll()
	if err != nil {
		return nil, err
	}

	if s.cacheManager != nil {
		ttl := s.cacheConfig.GetTTLForDataType("vehicle_list")
		if cacheErr := s.cacheManager.SetVehicleList("all_vehicles", vehicles, ttl); cacheErr != nil {
			log.Printf("Failed to cache all vehicles: %v", cacheErr)
		}
	}

	return vehicles, nil
}

func (s *VehicleService) GetAvailableVehicles() ([]*models.Vehicle, error) {
	if s.cacheManager != nil {
		cachedVehicles, err := s.cacheManager.GetVehicleList("available_vehicles")
		if err == nil && cachedVehicles != nil {
			return cachedVehicles, nil
		}
		if err != nil {
			log.Printf("Cache error for GetAvailableVehicles: %v", err)
		}
	}

	vehicles, err := s.vehicleRepo.FindAvailable()
	if err != nil {
		return nil, err
	}

	if s.cacheManager != nil {
		ttl := s.cacheConfig.GetTTLForDataType("vehicle_list")
		if cacheErr := s.cacheManager.SetVehicleList("available_vehicles", vehicles, ttl); cacheErr != nil {
			log.Printf("Failed to cache available vehicles: %v", cacheErr)
		}
	}

	return vehicles, nil
}

func (s *VehicleService) GetVehicleByID(id string) (*models.Vehicle, error) {
	if s.cacheManager != nil {
		cachedVehicle, err := s.cacheManager.GetVehicle(id)
		if err == nil && cachedVehicle != nil {
			return cachedVehicle, nil
		}
		if err != nil {
			log.Printf("Cache error for GetVehicleByID(%s): %v", id, err)
		}
	}

	vehicle, err := s.vehicleRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if s.cacheManager != nil {
		ttl := s.cacheConfig.GetTTLForDataType("vehicle")
		if cacheErr := s.cacheManager.SetVehicle(id, vehicle, ttl); cacheErr != nil {
			log.Printf("Failed to cache vehicle %s: %v", id, cacheErr)
		}
	}

	return vehicle, nil
}

func (s *VehicleService) GetVehiclesByBrand(brand string) ([]*models.Vehicle, error) {
	cacheKey := fmt.Sprintf("vehicles_by_brand_%s", brand)
	if s.cacheManager != nil {
		cachedVehicles, err := s.cacheManager.GetVehicleList(cacheKey)
		if err == nil && cachedVehicles != nil {
			return cachedVehicles, nil
		}
		if err != nil {
			log.Printf("Cache error for GetVehiclesByBrand(%s): %v", brand, err)
		}
	}

	vehicles, err := s.vehicleRepo.FindByBrand(brand)
	if err != nil {
		return nil, err
	}

	if s.cacheManager != nil {
		ttl := s.cacheConfig.GetTTLForDataType("vehicle_list")
		if cacheErr := s.cacheManager.SetVehicleList(cacheKey, vehicles, ttl); cacheErr != nil {
			log.Printf("Failed to cache vehicles by brand %s: %v", brand, cacheErr)
		}
	}

	return vehicles, nil
}

func (s *VehicleService) GetVehiclesByFuelType(fuelType string) ([]*models.Vehicle, error) {
	return s.vehicleRepo.FindByFuelType(fuelType)
}

func (s *VehicleService) GetVehiclesByMaxPrice(maxPricePerDay float64) ([]*models.Vehicle, error) {
	return s.vehicleRepo.FindByPriceBelow(maxPricePerDay)
}

func (s *VehicleService) CreateVehicle(req *CreateVehicleRequest) (*models.Vehicle, error) {
	now := time.Now()
	vehicle := &models.Vehicle{
		ID:           primitive.NewObjectID(),
		Name:         req.Name,
		Brand:        req.Brand,
		ModelYear:    req.ModelYear,
		FuelType:     req.FuelType,
		Transmission: req.Transmission,
		PricePerDay:  req.PricePerDay,
		Location:     req.Location,
		Images:       req.Images,
		Available:    true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.vehicleRepo.Create(vehicle)
	if err != nil {
		return nil, err
	}

	s.invalidateListCaches(created)
	s.publishVehicleChange(created.ID.Hex())

	return created, nil
}

func (s *VehicleService) UpdateVehicle(id string, req *UpdateVehicleRequest) (*models.Vehicle, error) {
	vehicle, err := s.vehicleRepo.FindByID(id)
	if err != nil {
		return nil, errors.New("vehicle not found")
	}

	if req.Name != "" {
		vehicle.Name = req.Name
	}
	if req.Brand != "" {
		vehicle.Brand = req.Brand
	}
	if req.ModelYear > 0 {
		vehicle.ModelYear = req.ModelYear
	}
	if req.FuelType != "" {
		vehicle.FuelType = req.FuelType
	}
	if req.Transmission != "" {
		vehicle.Transmission = req.Transmission
	}
	if req.PricePerDay > 0 {
		vehicle.PricePerDay = req.PricePerDay
	}
	if req.Location != "" {
		vehicle.Location = req.Location
	}
	if len(req.Images) > 0 {
		vehicle.Images = req.Images
	}
	if req.Available != nil {
		vehicle.Available = *req.Available
	}

	updated, err := s.vehicleRepo.Update(id, vehicle)
	if err != nil {
		return nil, err
	}

	s.invalidateVehicleCaches(updated)
	s.publishVehicleChange(updated.ID.Hex())

	return updated, nil
}

// SetAvailability toggles the availability flag. Availability stays
// administrator-controlled; it is not derived from active bookings.
func (s *VehicleService) SetAvailability(id string, available bool) (*models.Vehicle, error) {
	if err := s.vehicleRepo.SetAvailability(id, available); err != nil {
		return nil, err
	}

	vehicle, err := s.vehicleRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	s.invalidateVehicleCaches(vehicle)
	s.publishVehicleChange(vehicle.ID.Hex())

	return vehicle, nil
}

func (s *VehicleService) DeleteVehicle(id string) error {
	vehicle, err := s.vehicleRepo.FindByID(id)
	if err != nil {
		return errors.New("vehicle not found")
	}

	if err := s.vehicleRepo.Delete(id); err != nil {
		return err
	}

	s.invalidateVehicleCaches(vehicle)
	s.publishVehicleChange(vehicle.ID.Hex())

	return nil
}

func (s *VehicleService) invalidateListCaches(vehicle *models.Vehicle) {
	if s.cacheManager == nil {
		return
	}

	keys := []string{
		s.cacheConfig.KeyPrefix + "vehicle_list:all_vehicles",
		s.cacheConfig.KeyPrefix + "vehicle_list:available_vehicles",
		fmt.Sprintf("%svehicle_list:vehicles_by_brand_%s", s.cacheConfig.KeyPrefix, vehicle.Brand),
	}
	for _, key := range keys {
		if err := s.cacheManager.Delete(key); err != nil {
			log.Printf("Failed to invalidate cache key %s: %v", key, err)
		}
	}
}

func (s *VehicleService) invalidateVehicleCaches(vehicle *models.Vehicle) {
	if s.cacheManager == nil {
		return
	}

	if err := s.cacheManager.InvalidateVehicle(vehicle.ID.Hex()); err != nil {
		log.Printf("Failed to invalidate vehicle cache for %s: %v", vehicle.ID.Hex(), err)
	}

	s.invalidateListCaches(vehicle)
}

func (s *VehicleService) publishVehicleChange(vehicleID string) {
	if s.publisher == nil {
		return
	}

	if err := s.publisher.Publish(events.VehicleChanged(vehicleID)); err != nil {
		log.Printf("Failed to publish vehicle-changed for %s: %v", vehicleID, err)
	}
}
