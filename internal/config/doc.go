// Package config stores what fmremote remembers between runs.
//
// The YAML file holds two things: the tuners this machine has talked to
// (keyed by WebSocket URL, with an optional nickname and the mDNS instance they
// were found under) and client preferences. Preferences cover discovery, the
// segment display parameters applied before the first STATUS frame, the
// device's preset group names and logging.
//
// Presets, the tuned frequency and the color scheme belong to the device. They
// arrive fresh on every connection and are never written here.
//
// The file lives at $FMREMOTE_CONFIG when set, otherwise in the platform config
// directory (see GetConfigDir):
//
//	reg, err := config.LoadRegistry()
//	if err != nil {
//	    return err
//	}
//	reg.SetDeviceNickname("ws://192.168.1.40/", "kitchen")
//	return reg.Save()
//
// Saves go through a temp file and rename and are serialized within the
// process.
package config
