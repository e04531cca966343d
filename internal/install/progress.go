package install

// Profile holds the per-provider progress calibration shown to users while a
// server installs. The values are UX constants, not measurements.
type Profile struct {
	Provider string
	Unknown  float64
	Created  float64
	Booted   float64
}

var (
	// DigitalOceanProfile is used for droplets watched through tags.
	DigitalOceanProfile = Profile{Provider: "digitalocean", Unknown: 0.1, Created: 0.5, Booted: 0.8}

	// GCPProfile is used for instances watched through guest attributes.
	GCPProfile = Profile{Provider: "gcp", Unknown: 0.1, Created: 0.2, Booted: 0.6}

	// HetznerProfile is used for servers watched through labels.
	HetznerProfile = Profile{Provider: "hetzner", Unknown: 0.1, Created: 0.5, Booted: 0.8}
)

// Progress maps a state to a fraction in [0,1]. It depends on nothing but
// the state. Error and Deleted report 0.
func (p Profile) Progress(s State) float64 {
	switch s {
	case StateUnknown:
		return p.Unknown
	case StateCreated:
		return p.Created
	case StateBooted:
		return p.Booted
	case StateSuccess:
		return 1
	default:
		return 0
	}
}
