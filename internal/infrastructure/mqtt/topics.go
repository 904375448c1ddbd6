package mqtt

// TopicPrefixSystem is the base for simulator system topics.
//
// Unit telemetry and command topics are free-form and come from the units
// file; only the simulator's own status lives under this prefix.
const TopicPrefixSystem = "fleetsim/system"

// Topics provides builders for the simulator's own MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
type Topics struct{}

// SystemStatus returns the topic carrying the simulator's online/offline status.
//
// Example: fleetsim/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}
