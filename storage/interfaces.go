package storage

import "housing-dashboard/models"

// ListingExporter is the interface any listing export backend must satisfy.
type ListingExporter interface {
	WriteRentals(listings []models.RentalListing) error
	WriteOwnership(listings []models.OwnershipListing) error
}
