package scheduler

import "sync"

// PowerObserver is told when the machine moves on or off battery.
type PowerObserver interface {
	OnPowerStateChange(onBatteryPower bool)
}

// PowerMonitor reports the power source of the machine.
type PowerMonitor interface {
	IsOnBatteryPower() bool
	AddObserver(o PowerObserver)
	RemoveObserver(o PowerObserver)
}

// ManualPowerMonitor is a PowerMonitor whose state is set by its owner.
type ManualPowerMonitor struct {
	lock      sync.Mutex
	onBattery bool
	observers []PowerObserver
}

// NewManualPowerMonitor creates a monitor with the given initial state.
func NewManualPowerMonitor(onBattery bool) *ManualPowerMonitor {
	return &ManualPowerMonitor{onBattery: onBattery}
}

// IsOnBatteryPower tells if the machine runs on battery.
func (m *ManualPowerMonitor) IsOnBatteryPower() bool {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.onBattery
}

// SetOnBatteryPower changes the state and notifies observers if it
// flipped.
func (m *ManualPowerMonitor) SetOnBatteryPower(onBattery bool) {
	m.lock.Lock()
	if m.onBattery == onBattery {
		m.lock.Unlock()
		return
	}

	m.onBattery = onBattery
	observers := append([]PowerObserver(nil), m.observers...)
	m.lock.Unlock()

	for _, o := range observers {
		o.OnPowerStateChange(onBattery)
	}
}

// AddObserver subscribes o to power state changes.
func (m *ManualPowerMonitor) AddObserver(o PowerObserver) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.observers = append(m.observers, o)
}

// RemoveObserver unsubscribes o.
func (m *ManualPowerMonitor) RemoveObserver(o PowerObserver) {
	m.lock.Lock()
	defer m.lock.Unlock()

	for i, obs := range m.observers {
		if obs == o {
			m.observers = append(m.observers[:i], m.observers[i+1:]...)
			return
		}
	}
}
