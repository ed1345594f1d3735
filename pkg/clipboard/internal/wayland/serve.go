package wayland

import (
	"fmt"
	"syscall"
)

// Object ids this client assigns (client range 2–0xfeffffff).
const (
	idDisplay  uint32 = 1
	idRegistry uint32 = 2
	idSync1    uint32 = 3
	idSeat     uint32 = 4
	idManager  uint32 = 5 // zwlr_data_control_manager_v1
	idSource   uint32 = 6 // zwlr_data_control_source_v1
	idDevice   uint32 = 7 // zwlr_data_control_device_v1
	idSync2    uint32 = 8
)

// Serve claims the clipboard and blocks, answering paste requests with the
// bytes of whichever offered MIME type the pasting client picked. It
// returns when another application takes clipboard ownership.
func Serve(formats map[string][]byte) error {
	c, err := dial()
	if err != nil {
		return err
	}
	defer c.close()

	seat, manager, err := discoverGlobals(c)
	if err != nil {
		return err
	}

	if err := claimSelection(c, seat, manager, formats); err != nil {
		return err
	}

	return serveLoop(c, formats)
}

// discoverGlobals enumerates the registry and returns the global names of
// wl_seat and the data-control manager.
func discoverGlobals(c *conn) (seat, manager uint32, err error) {
	if err := c.request(idDisplay, 1 /*get_registry*/, uint32Arg(idRegistry)); err != nil {
		return 0, 0, err
	}
	if err := c.request(idDisplay, 0 /*sync*/, uint32Arg(idSync1)); err != nil {
		return 0, 0, err
	}

	var seatFound, managerFound bool
	for {
		ev, err := c.next()
		if err != nil {
			return 0, 0, err
		}
		if ev.fd >= 0 {
			syscall.Close(ev.fd) //nolint:errcheck
		}

		if ev.object == idSync1 && ev.opcode == 0 /*done*/ {
			break
		}
		if ev.object != idRegistry || ev.opcode != 0 /*global*/ {
			continue
		}
		if len(ev.payload) < 4 {
			continue
		}

		name := le.Uint32(ev.payload[:4])
		iface, _, perr := parseString(ev.payload[4:])
		if perr != nil {
			continue
		}
		switch iface {
		case "wl_seat":
			seat = name
			seatFound = true
		case "zwlr_data_control_manager_v1":
			manager = name
			managerFound = true
		}
	}

	if !seatFound {
		return 0, 0, fmt.Errorf("wayland: wl_seat not found")
	}
	if !managerFound {
		return 0, 0, fmt.Errorf("wayland: compositor does not support wlr-data-control")
	}
	return seat, manager, nil
}

// claimSelection binds the globals, creates a data source offering every
// format, and sets it as the selection. Returns once the compositor has
// acknowledged ownership.
func claimSelection(c *conn, seat, manager uint32, formats map[string][]byte) error {
	// wl_registry.bind inlines the new_id as [name][interface][version][id].
	if err := c.request(idRegistry, 0, /*bind*/
		uint32Arg(seat), stringArg("wl_seat"), uint32Arg(1), uint32Arg(idSeat)); err != nil {
		return err
	}
	if err := c.request(idRegistry, 0, /*bind*/
		uint32Arg(manager), stringArg("zwlr_data_control_manager_v1"), uint32Arg(2), uint32Arg(idManager)); err != nil {
		return err
	}

	if err := c.request(idManager, 0 /*create_data_source*/, uint32Arg(idSource)); err != nil {
		return err
	}
	for mime := range formats {
		if err := c.request(idSource, 0 /*offer*/, stringArg(mime)); err != nil {
			return err
		}
	}

	if err := c.request(idManager, 1 /*get_data_device*/, uint32Arg(idDevice), uint32Arg(idSeat)); err != nil {
		return err
	}
	if err := c.request(idDevice, 0 /*set_selection*/, uint32Arg(idSource)); err != nil {
		return err
	}

	if err := c.request(idDisplay, 0 /*sync*/, uint32Arg(idSync2)); err != nil {
		return err
	}
	for {
		ev, err := c.next()
		if err != nil {
			return err
		}
		if ev.fd >= 0 {
			syscall.Close(ev.fd) //nolint:errcheck
		}
		if ev.object == idSync2 && ev.opcode == 0 /*done*/ {
			return nil
		}
	}
}

// serveLoop answers send events until the selection is cancelled.
func serveLoop(c *conn, formats map[string][]byte) error {
	for {
		ev, err := c.next()
		if err != nil {
			// Compositor went away; nothing left to serve.
			return nil
		}

		if ev.object != idSource {
			if ev.fd >= 0 {
				syscall.Close(ev.fd) //nolint:errcheck
			}
			continue
		}

		switch ev.opcode {
		case 0: // zwlr_data_control_source_v1.send
			mime, _, _ := parseString(ev.payload)
			if ev.fd >= 0 {
				if data, ok := formats[mime]; ok {
					writeAll(ev.fd, data)
				}
				syscall.Close(ev.fd) //nolint:errcheck
			}
		case 1: // zwlr_data_control_source_v1.cancelled
			return nil
		}
	}
}
