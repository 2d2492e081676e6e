// Package preset keeps the growing list of device presets and the two
// selection groups built over it.
//
// Each announced preset becomes an Entry with two controls: a navigate
// control ("preset<N>") in the navigate group and a set-default control
// ("default<N>") in the set-default group. Selecting a control clears the
// others of the same group only and sends the group name and the control's
// frequency text to the device.
//
// Every Add calls Rebind, which detaches the one shared change handler from
// all controls and attaches it again, so a selection fires the handler exactly
// once however many presets exist.
package preset
