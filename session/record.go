package session

import (
	"encoding/json"
	"fmt"
	"time"
)

// DriveOption selects between self-drive and chauffeured rentals.
type DriveOption string

const (
	SelfDrive  DriveOption = "self_drive"
	WithDriver DriveOption = "with_driver"
)

// SearchCriteria captures the search form on the browse page.
type SearchCriteria struct {
	PickupLocation string `json:"pickup_location"`
	PickupDate     string `json:"pickup_date"`
	ReturnDate     string `json:"return_date"`
	StartTime      string `json:"start_time"`
	DeliveryMethod string `json:"delivery_method"`
}

// RenterInfo captures the renter form on the booking page.
type RenterInfo struct {
	FullName       string `json:"full_name"`
	Email          string `json:"email"`
	PhoneNumber    string `json:"phone_number"`
	DriversLicense string `json:"drivers_license"`
}

// Record is the single persisted unit of wizard progress. It lives in an
// untrusted storage slot; the checksum is the only thing standing between
// a loaded record and a tampered one.
type Record struct {
	SessionID        string          `json:"session_id"`
	Step             Step            `json:"step"`
	SearchCriteria   *SearchCriteria `json:"search_criteria,omitempty"`
	VehicleSelection json.RawMessage `json:"vehicle_selection,omitempty"`
	RenterInfo       *RenterInfo     `json:"renter_info,omitempty"`
	DriveOption      DriveOption     `json:"drive_option,omitempty"`
	AgreedToTerms    bool            `json:"agreed_to_terms"`
	LastTouchedAt    time.Time       `json:"last_touched_at"`
	Checksum         string          `json:"checksum,omitempty"`
}

// Clone returns a deep copy so callers can never mutate the store's view.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	cp := *r
	if r.SearchCriteria != nil {
		sc := *r.SearchCriteria
		cp.SearchCriteria = &sc
	}
	if r.RenterInfo != nil {
		ri := *r.RenterInfo
		cp.RenterInfo = &ri
	}
	if r.VehicleSelection != nil {
		cp.VehicleSelection = append(json.RawMessage(nil), r.VehicleSelection...)
	}
	return &cp
}

// canonical returns the deterministic serialization the checksum is computed
// over: the persisted JSON shape with the checksum field absent.
func (r *Record) canonical() ([]byte, error) {
	cp := *r
	cp.Checksum = ""
	data, err := json.Marshal(&cp)
	if err != nil {
		return nil, fmt.Errorf("serializing session record: %w", err)
	}
	return data, nil
}

// Update is a partial update merged onto the current record by Save. Nil
// fields are left untouched. Step is deliberately absent: progression goes
// through the store's mutators only.
type Update struct {
	SearchCriteria   *SearchCriteria
	VehicleSelection json.RawMessage
	RenterInfo       *RenterInfo
	DriveOption      *DriveOption
	AgreedToTerms    *bool
}

func (r *Record) apply(u Update) {
	if u.SearchCriteria != nil {
		sc := *u.SearchCriteria
		r.SearchCriteria = &sc
	}
	if u.VehicleSelection != nil {
		r.VehicleSelection = append(json.RawMessage(nil), u.VehicleSelection...)
	}
	if u.RenterInfo != nil {
		ri := *u.RenterInfo
		r.RenterInfo = &ri
	}
	if u.DriveOption != nil {
		r.DriveOption = *u.DriveOption
	}
	if u.AgreedToTerms != nil {
		r.AgreedToTerms = *u.AgreedToTerms
	}
}
