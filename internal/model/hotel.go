package model

import "time"

// Hotel represents a bookable hotel and its room inventory.  The
// invariant 0 <= AvailableRooms <= TotalRooms holds at all times.
//
// Fields:
//  ID                 – primary key identifier.
//  Name               – hotel name.
//  Address            – street address.
//  City, Country      – location.
//  Stars              – star rating between 1 and 5.
//  PricePerNightCents – price of one room for one night in cents.
//  TotalRooms         – rooms the hotel offers.
//  AvailableRooms     – rooms that can still be booked.
//  Description        – free text.
//  Amenities          – rows of hotel_amenities.
type Hotel struct {
    ID                 uint64    `json:"id"`                    // hotels.id
    Name               string    `json:"name"`                  // hotels.name
    Address            string    `json:"address"`               // hotels.address
    City               string    `json:"city"`                  // hotels.city
    Country            string    `json:"country"`               // hotels.country
    Stars              int       `json:"stars"`                 // hotels.stars
    PricePerNightCents int64     `json:"price_per_night_cents"` // hotels.price_per_night_cents
    TotalRooms         int       `json:"total_rooms"`           // hotels.total_rooms
    AvailableRooms     int       `json:"available_rooms"`       // hotels.available_rooms
    Description        string    `json:"description"`           // hotels.description
    Amenities          []string  `json:"amenities"`             // hotel_amenities.amenity
    CreatedAt          time.Time `json:"created_at"`            // hotels.created_at
    UpdatedAt          time.Time `json:"updated_at"`            // hotels.updated_at
}
