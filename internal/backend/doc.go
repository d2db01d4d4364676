// Package backend defines the vendor-agnostic capability model shared by
// every hardware backend in Polychromatic Core.
//
// A backend translates one vendor's control surface (for example the
// OpenRazer daemon) into Devices, Zones and Options. The UI and the
// middleman orchestrator only ever speak this vocabulary; nothing
// vendor-specific crosses the Backend interface.
//
// # Key Types
//
//   - Backend: the contract every vendor adapter implements
//   - Device: one physical peripheral, rebuilt fresh on every enumeration
//   - Zone: a named lighting region of a device ("main", "logo", ...)
//   - Option: one controllable capability, a closed tagged union over
//     effect/toggle/slider/multiple-choice/dialog/button variants
//   - Parameter: a sub-choice within an option (speed, direction, ...)
//
// # Usage
//
//	razer := openrazer.New(client)
//	devices, err := razer.GetDevices(ctx)
//	if err != nil { ... }
//	for _, dev := range devices {
//	    for _, zone := range dev.Zones {
//	        for _, opt := range zone.Options {
//	            fmt.Println(zone.ID, opt.UID, opt.Active)
//	        }
//	    }
//	}
package backend
