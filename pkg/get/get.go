// Package get fetches remote step sources through go-getter, with a local
// cache so repeated includes of the same source do not re-download.
package get

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	getter "github.com/hashicorp/go-getter"
	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"
)

const cacheBaseDir = ".tread/cache"

// Remote reports whether src names a remote source rather than a local
// path: a URL, a forced-getter form like "git::...", or a known hosting
// prefix.
func Remote(src string) bool {
	if strings.Contains(src, "://") || strings.Contains(src, "::") {
		return true
	}

	for _, prefix := range []string{"github.com/", "bitbucket.org/", "gitlab.com/"} {
		if strings.HasPrefix(src, prefix) {
			return true
		}
	}

	return false
}

// File downloads a remote source and returns the local path of the cached
// copy.
func File(src string) (string, error) {
	pwd, err := os.Getwd()
	if err != nil {
		return "", errors.Trace(err)
	}

	sum := sha256.Sum256([]byte(src))
	dst := filepath.Join(pwd, cacheBaseDir, hex.EncodeToString(sum[:8]), filepath.Base(src))

	log.WithFields(log.Fields{"src": src, "dst": dst}).Debug("fetching remote step source")

	client := &getter.Client{
		Src:  src,
		Dst:  dst,
		Pwd:  pwd,
		Mode: getter.ClientModeFile,
	}
	if err := client.Get(); err != nil {
		return "", errors.Annotatef(err, "failed to fetch %q", src)
	}

	return dst, nil
}
