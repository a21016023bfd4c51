package envfile

// Category groups related config keys for display.
type Category int

const (
	CategoryNetwork Category = iota
	CategorySystem
	CategoryPihole
	CategoryWireGuard
	CategoryNPM
)

// CategoryInfo is the display metadata for a category.
type CategoryInfo struct {
	Name    string `json:"name"`
	Tooltip string `json:"tooltip,omitempty"`
}

var categoryInfo = map[Category]CategoryInfo{
	CategoryNetwork: {
		Name:    "Network",
		Tooltip: "Network settings are auto-detected on boot. If something looks wrong, restart the Guardian Hub to refresh network configuration.",
	},
	CategorySystem:    {Name: "System"},
	CategoryPihole:    {Name: "Pi-hole"},
	CategoryWireGuard: {Name: "Wire Guard"},
	CategoryNPM:       {Name: "NPM"},
}

// Info returns the display metadata for the category.
func (c Category) Info() CategoryInfo { return categoryInfo[c] }

// Key is a statically known configuration key in the env file. Keys not in
// this set are preserved on write but never surfaced on read.
type Key string

const (
	KeyGuardianIP       Key = "GUARDIAN_IP"
	KeyRouterIP         Key = "ROUTER_IP"
	KeyNetworkCIDR      Key = "NETWORK_CIDR"
	KeyNetworkDomain    Key = "NETWORK_DOMAIN"
	KeyTimezone         Key = "TZ"
	KeyLoginPassword    Key = "LOGIN_PASSWORD"
	KeyPiholePassword   Key = "PIHOLE_PASSWORD"
	KeyWireGuardHash    Key = "WIREGUARD_PASSWORD_HASH"
	KeyNPMAdminPassword Key = "NPM_ADMIN_PASSWORD"
	KeyNPMAdminEmail    Key = "NPM_ADMIN_EMAIL"
)

// keyMeta describes one known key.
type keyMeta struct {
	category    Category
	displayName string
	sensitive   bool
	tooltip     string
}

var keys = map[Key]keyMeta{
	KeyGuardianIP:    {CategoryNetwork, "Guardian Hub IP Address", false, ""},
	KeyRouterIP:      {CategoryNetwork, "Router Gateway IP Address", false, ""},
	KeyNetworkCIDR:   {CategoryNetwork, "Network CIDR Range", false, ""},
	KeyNetworkDomain: {CategoryNetwork, "Network Domain", false, ""},
	KeyTimezone: {CategorySystem, "Time Zone", false,
		"Changing timezone will restart Pi-hole and Cloudflared services to apply the new time zone."},
	KeyLoginPassword: {CategorySystem, "Config UI Login Password", true,
		"Requires current password, new password, and serial number from device label. Changing this password will not restart any services."},
	KeyPiholePassword: {CategoryPihole, "Web Interface Password", true,
		"Pi-hole web interface password. Changes take effect immediately without restarting the container."},
	KeyWireGuardHash: {CategoryWireGuard, "Password Hash", true,
		"WireGuard Easy web interface password. Updates password and recreates the container to apply changes."},
	KeyNPMAdminPassword: {CategoryNPM, "Admin Password", true,
		"Nginx Proxy Manager admin password. Changes take effect immediately without restarting the container."},
	KeyNPMAdminEmail: {CategoryNPM, "Admin Email", false,
		"The user email in NPM must match this to allow managing the Admin Password."},
}

// Category returns the key's category.
func (k Key) Category() Category { return keys[k].category }

// DisplayName returns the human-readable name for the key.
func (k Key) DisplayName() string { return keys[k].displayName }

// Sensitive reports whether the key's value must be masked before display.
func (k Key) Sensitive() bool { return keys[k].sensitive }

// Tooltip returns optional help text for the key.
func (k Key) Tooltip() string { return keys[k].tooltip }

// lookupKey resolves a raw file key name to a known Key.
func lookupKey(name string) (Key, bool) {
	k := Key(name)
	_, ok := keys[k]
	return k, ok
}
