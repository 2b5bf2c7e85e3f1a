package ice

import (
	"github.com/lanikai/alohartc/internal/logging"
)

var log = logging.DefaultLogger.WithTag("ice")
