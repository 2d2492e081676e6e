// Package discovery finds tuners on the local network over mDNS.
//
// Tuners (and the fmremote-sim simulator) advertise the "_fmremote._tcp"
// service. The TXT record "path" names the WebSocket path and "title" the
// display title. Devices that only publish a hostname are not found by a scan;
// connect to them by name instead (e.g. "esp32-radio.local").
//
// Scanning requires multicast on the local segment and UDP port 5353.
package discovery
