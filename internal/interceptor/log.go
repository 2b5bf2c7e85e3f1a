package interceptor

import (
	"github.com/lanikai/alohartc/internal/logging"
)

var log = logging.DefaultLogger.WithTag("interceptor")
