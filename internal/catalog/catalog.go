package catalog

// Category groups services for dashboard rollups.
type Category string

const (
	CategoryNHSClinical    Category = "NHS Clinical"
	CategoryVaccinations   Category = "Vaccinations"
	CategoryPrivateClinics Category = "Private Clinics"
	CategoryCPCS           Category = "CPCS"
)

// Service is one reportable service line. Fee is the per-session fee in
// pounds; a nil Fee means revenue is entered directly by the site.
type Service struct {
	ID       string
	Label    string
	Fee      *float64
	Category Category
}

// Fixed reports whether revenue derives from a session count.
func (s Service) Fixed() bool {
	return s.Fee != nil
}

// Catalog holds the fixed reference data: the service list in display
// order and the pharmacy roster. Built once at startup and never mutated.
type Catalog struct {
	services   []Service
	pharmacies []string
	byID       map[string]Service
	categories []Category
}

// New builds a Catalog from a service list and pharmacy roster.
// Service IDs must be unique; duplicates keep the first occurrence.
func New(services []Service, pharmacies []string) *Catalog {
	c := &Catalog{
		services:   make([]Service, 0, len(services)),
		pharmacies: append([]string(nil), pharmacies...),
		byID:       make(map[string]Service, len(services)),
	}
	seenCat := make(map[Category]bool)
	for _, svc := range services {
		if _, dup := c.byID[svc.ID]; dup {
			continue
		}
		c.byID[svc.ID] = svc
		c.services = append(c.services, svc)
		if !seenCat[svc.Category] {
			seenCat[svc.Category] = true
			c.categories = append(c.categories, svc.Category)
		}
	}
	return c
}

// Services returns the catalog in display order.
func (c *Catalog) Services() []Service {
	return c.services
}

// Service looks up a service by id.
func (c *Catalog) Service(id string) (Service, bool) {
	svc, ok := c.byID[id]
	return svc, ok
}

// Pharmacies returns the fixed site roster.
func (c *Catalog) Pharmacies() []string {
	return c.pharmacies
}

// HasPharmacy reports roster membership.
func (c *Catalog) HasPharmacy(name string) bool {
	for _, p := range c.pharmacies {
		if p == name {
			return true
		}
	}
	return false
}

// Categories returns the distinct categories in first-seen order.
func (c *Catalog) Categories() []Category {
	return c.categories
}

func fee(v float64) *float64 {
	return &v
}

// Default returns the production catalog for the pharmacy group.
func Default() *Catalog {
	return New([]Service{
		{ID: "nms_intervention", Label: "NMS – Intervention", Fee: fee(14.00), Category: CategoryNHSClinical},
		{ID: "nms_followup", Label: "NMS – Follow Up", Fee: fee(14.00), Category: CategoryNHSClinical},
		{ID: "bp_check", Label: "BP Clinic Check", Fee: fee(10.00), Category: CategoryNHSClinical},
		{ID: "bp_abpm", Label: "BP Clinic ABPM", Fee: fee(50.85), Category: CategoryNHSClinical},
		{ID: "pcs_oral", Label: "PCS – Oral Contraceptive", Fee: fee(25.00), Category: CategoryNHSClinical},
		{ID: "pcs_emergency", Label: "PCS – Emergency Contraceptive", Fee: fee(20.00), Category: CategoryNHSClinical},
		{ID: "nhs_flu", Label: "NHS Flu", Fee: fee(10.06), Category: CategoryVaccinations},
		{ID: "private_flu", Label: "Private Flu", Fee: fee(23.00), Category: CategoryVaccinations},
		{ID: "nhs_covid", Label: "NHS Covid", Fee: fee(10.06), Category: CategoryVaccinations},
		{ID: "private_covid", Label: "Private Covid", Fee: fee(99.00), Category: CategoryVaccinations},
		{ID: "travel_clinic", Label: "Travel Clinics", Fee: nil, Category: CategoryPrivateClinics},
		{ID: "weight_loss", Label: "Weight Loss Clinic", Fee: nil, Category: CategoryPrivateClinics},
		{ID: "ear_single", Label: "Ear Microsuction – Single", Fee: fee(40.00), Category: CategoryPrivateClinics},
		{ID: "ear_both", Label: "Ear Microsuction – Both Ears", Fee: fee(70.00), Category: CategoryPrivateClinics},
		{ID: "cpcs_ums", Label: "CPCS – UMS", Fee: fee(15.00), Category: CategoryCPCS},
		{ID: "cpcs_mi", Label: "CPCS – MI", Fee: fee(17.00), Category: CategoryCPCS},
	}, []string{
		"Binscombe Pharmacy",
		"Popley Pharmacy",
		"Direct Pharmacy",
		"Dapdune Pharmacy",
		"Winklebury Pharmacy",
		"East Wittering Pharmacy",
	})
}
