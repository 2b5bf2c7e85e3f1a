package ice

import (
	"flag"
	"fmt"
	stdlog "log"
	"os"
	"strings"
)

const defaultStunServer = "stun2.l.google.com:19302"

var (
	// Whether or not to allow IPv6 ICE candidates
	flagEnableIPv6 bool

	// Host:port of STUN server
	flagStunServer string

	// Host:port of TURN server. Empty disables relay-candidate gathering.
	flagTurnServer string

	// TURN credentials, ignored if flagTurnServer is empty.
	flagTurnUsername string
	flagTurnPassword string

	traceEnabled = false
)

func init() {
	flag.BoolVar(&flagEnableIPv6, "6", false, "Allow use of IPv6")
	flag.StringVar(&flagStunServer, "stunServer", defaultStunServer, "STUN server address")
	flag.StringVar(&flagTurnServer, "turnServer", "", "TURN server address (host:port)")
	flag.StringVar(&flagTurnUsername, "turnUsername", "", "TURN username")
	flag.StringVar(&flagTurnPassword, "turnPassword", "", "TURN password")

	for _, tag := range strings.Split(os.Getenv("TRACE"), ",") {
		if tag == "ice" {
			traceEnabled = true
			break
		}
	}
}

func trace(format string, a ...interface{}) {
	if !traceEnabled {
		return
	}

	format = "[ice] " + format
	if !strings.HasSuffix(format, "\n") {
		format += "\n"
	}
	stdlog.Output(2, fmt.Sprintf(format, a...))
}
