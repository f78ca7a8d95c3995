package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/git1file/git1file/errors"
)

// ServiceConstraint is the range of ingestion service versions this client
// is known to work with.
const ServiceConstraint = ">= 0.1.0, < 2.0.0"

// CheckService reports whether the version advertised by the service's
// health endpoint satisfies ServiceConstraint. Development builds of the
// service ("dev", "") are accepted.
func CheckService(serviceVersion string) error {
	serviceVersion = strings.TrimSpace(serviceVersion)
	if serviceVersion == "" || serviceVersion == "dev" {
		return nil
	}

	v, err := semver.NewVersion(serviceVersion)
	if err != nil {
		return errors.Wrapf(err, "service reported unparseable version %q", serviceVersion)
	}

	c, err := semver.NewConstraint(ServiceConstraint)
	if err != nil {
		return errors.Wrap(err, "invalid service constraint")
	}

	if ok, reasons := c.Validate(v); !ok {
		err := errors.Newf("service version %s is not supported", v)
		for _, reason := range reasons {
			err = errors.WithDetail(err, reason.Error())
		}
		return errors.WithHintf(err, "this client supports service versions %s", ServiceConstraint)
	}
	return nil
}
