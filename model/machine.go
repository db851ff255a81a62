package model

// Role identifies which side of the benchmark a provisioned machine plays.
type Role string

const (
	// RoleClient is the machine that runs the fio workload.
	RoleClient Role = "client"
	// RoleServer is the machine the workload targets.
	RoleServer Role = "server"
)

// Machine is a handle to one provisioned machine.
type Machine struct {
	// Name assigned by the provisioning layer; role is resolved from it
	Name string `json:"name" yaml:"name"`
	// Public address used for SSH access
	PublicAddress string `json:"public_address" yaml:"public_address"`
	// SSH port (0 means default)
	Port int `json:"port,omitempty" yaml:"port,omitempty"`
	// Login user
	User string `json:"user,omitempty" yaml:"user,omitempty"`
}

// Host returns the user@address form expected by SSH.
func (m Machine) Host() string {
	if m.User == "" {
		return m.PublicAddress
	}
	return m.User + "@" + m.PublicAddress
}
