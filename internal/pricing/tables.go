package pricing

import "strings"

// gcpMachineTypes holds on-demand monthly prices in us-central1. The Compute
// API does not expose prices, so other regions are approximated by this table.
var gcpMachineTypes = map[string]float64{
	"f1-micro":      3.88,
	"g1-small":      13.23,
	"e2-micro":      6.11,
	"e2-small":      12.23,
	"e2-medium":     24.46,
	"e2-standard-2": 48.92,
	"e2-standard-4": 97.84,
	"n1-standard-1": 24.27,
	"n1-standard-2": 48.55,
	"n2-standard-2": 56.72,
}

// gcpFreeTierMachineType is billed at zero in the free-tier regions.
const gcpFreeTierMachineType = "e2-micro"

var gcpFreeTierRegions = map[string]bool{
	"us-west1":    true,
	"us-central1": true,
	"us-east1":    true,
}

// GCPMonthlyCost looks up the monthly price of a machine type in a zone.
// The second return value is false for unknown machine types.
func GCPMonthlyCost(machineType, zone string) (Money, bool) {
	price, ok := gcpMachineTypes[machineType]
	if !ok {
		return Money{}, false
	}
	if machineType == gcpFreeTierMachineType && gcpFreeTierRegions[RegionOfZone(zone)] {
		return USD(0), true
	}
	return USD(price), true
}

// GCPMonthlyTransferBytes is the outbound transfer included with every
// instance. Egress beyond the free tier is billed per GiB.
const GCPMonthlyTransferBytes = GiB

// RegionOfZone strips the zone suffix, "us-central1-b" becomes "us-central1".
func RegionOfZone(zone string) string {
	if i := strings.LastIndex(zone, "-"); i > 0 {
		return zone[:i]
	}
	return zone
}

// hetznerTraffic is the included outbound traffic per location.
var hetznerTraffic = map[string]int64{
	"fsn1": 20 * TiB,
	"nbg1": 20 * TiB,
	"hel1": 20 * TiB,
	"ash":  1 * TiB,
	"hil":  1 * TiB,
	"sin":  TiB / 2,
}

// HetznerMonthlyTransferBytes returns the traffic included at a location,
// defaulting to the EU allowance for locations not in the table.
func HetznerMonthlyTransferBytes(location string) int64 {
	if b, ok := hetznerTraffic[location]; ok {
		return b
	}
	return 20 * TiB
}
