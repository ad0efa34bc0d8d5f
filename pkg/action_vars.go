package tread

import (
	"io/ioutil"

	"github.com/mitchellh/mapstructure"
	log "github.com/sirupsen/logrus"
	yaml "gopkg.in/yaml.v2"

	"github.com/treadproject/tread/pkg/util/maputil"
)

var varSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"set": map[string]interface{}{"type": "object"},
		"unset": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"sensitive": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"files": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
	},
	"additionalProperties": false,
}

// envSchema tightens the var schema: environment values must be strings.
var envSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"set": map[string]interface{}{
			"type":                 "object",
			"additionalProperties": map[string]interface{}{"type": "string"},
		},
		"unset": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"sensitive": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"files": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
	},
	"additionalProperties": false,
}

type storeConfig struct {
	Set       map[string]interface{} `mapstructure:"set"`
	Unset     []string               `mapstructure:"unset"`
	Sensitive []string               `mapstructure:"sensitive"`
	Files     []string               `mapstructure:"files"`
}

// storeAction is the shared implementation of the var and env actions: it
// updates a VariableStore by reading variable files, declaring sensitive
// names, unsetting, and finally setting templated values. A name present
// under both set and unset ends up set.
type storeAction struct {
	part

	set       map[string]TemplateFunc
	unset     []string
	sensitive []string
	files     []TemplateFunc
	dirname   string

	store func(ctxt *Context) VariableStore
}

func newStoreAction(ctxt *Context, name string, config interface{}, addr *StepAddress, store func(ctxt *Context) VariableStore) (Action, error) {
	var decoded storeConfig
	if err := mapstructure.Decode(config, &decoded); err != nil {
		return nil, configError(addr, "bad configuration for %q: %v", name, err)
	}

	action := &storeAction{
		part:      part{name: name, config: config, addr: addr},
		set:       map[string]TemplateFunc{},
		unset:     decoded.Unset,
		sensitive: decoded.Sensitive,
		dirname:   addr.Dirname(),
		store:     store,
	}

	for key, value := range decoded.Set {
		tmpl, err := ctxt.Template(value)
		if err != nil {
			return nil, configError(addr, "bad value for %q in %q: %v", key, name, err)
		}
		action.set[key] = tmpl
	}
	for _, fname := range decoded.Files {
		tmpl, err := ctxt.Template(fname)
		if err != nil {
			return nil, configError(addr, "bad file name in %q: %v", name, err)
		}
		action.files = append(action.files, tmpl)
	}

	return action, nil
}

func (a *storeAction) Call(ctxt *Context) (*StepResult, error) {
	store := a.store(ctxt)

	// Variable files come first; missing or non-mapping files are skipped.
	for _, ftmpl := range a.files {
		fname, err := templateString(ftmpl, ctxt)
		if err != nil {
			return nil, err
		}
		fpath := canonicalizePath(a.dirname, fname)

		data, err := ioutil.ReadFile(fpath)
		if err != nil {
			log.WithFields(log.Fields{"file": fpath}).Debug("skipping unreadable variable file")
			continue
		}

		var raw map[interface{}]interface{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			log.WithFields(log.Fields{"file": fpath}).Debug("skipping non-mapping variable file")
			continue
		}
		values, err := maputil.Normalize(raw)
		if err != nil {
			log.WithFields(log.Fields{"file": fpath}).Debug("skipping variable file with non-string keys")
			continue
		}
		if mapped, ok := values.(map[string]interface{}); ok {
			store.UpdateValues(mapped)
		}
	}

	for _, name := range a.sensitive {
		store.DeclareSensitive(name)
	}
	for _, name := range a.unset {
		store.Unset(name)
	}
	for name, tmpl := range a.set {
		value, err := tmpl(ctxt)
		if err != nil {
			return nil, err
		}
		store.SetValue(name, value)
	}

	return NewResult(StatusSuccess), nil
}

func newVariableAction(ctxt *Context, name string, config interface{}, addr *StepAddress) (Action, error) {
	return newStoreAction(ctxt, name, config, addr, func(ctxt *Context) VariableStore {
		return ctxt.Variables
	})
}

func newEnvironmentAction(ctxt *Context, name string, config interface{}, addr *StepAddress) (Action, error) {
	return newStoreAction(ctxt, name, config, addr, func(ctxt *Context) VariableStore {
		return ctxt.Environment
	})
}
