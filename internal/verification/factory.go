package verification

import (
	dErrors "custodia/pkg/domain-errors"
)

// Factory maps a declared plugin type to its constructed flow. Flows are
// wired once at startup with their collaborators; the factory is a pure
// lookup.
type Factory struct {
	flows map[PluginType]Flow
}

func NewFactory(fingerprint, smsOTP, token Flow) *Factory {
	return &Factory{flows: map[PluginType]Flow{
		PluginFingerprint: fingerprint,
		PluginSMSOTP:      smsOTP,
		PluginToken:       token,
	}}
}

// Create returns the flow for pluginType. An unknown type is a caller error.
func (f *Factory) Create(pluginType PluginType) (Flow, error) {
	flow, ok := f.flows[pluginType]
	if !ok || flow == nil {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown plugin type %q", pluginType)
	}
	return flow, nil
}
