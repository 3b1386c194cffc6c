package channels

// ChannelPolicy enumerates every admin controlled channel flag.
// The zero value is not the default; use DefaultChannelPolicy.
type ChannelPolicy struct {
	Public                       bool `json:"public"`
	AllowDeviceSelfSet           bool `json:"allow_device_self_set"`
	AllowEmulator                bool `json:"allow_emulator"`
	AllowDev                     bool `json:"allow_dev"`
	DisableAutoUpdateUnderNative bool `json:"disableAutoUpdateUnderNative"`
	DisableAutoUpdateToMajor     bool `json:"disableAutoUpdateToMajor"`
	IOS                          bool `json:"ios"`
	Android                      bool `json:"android"`
}

func DefaultChannelPolicy() ChannelPolicy {
	return ChannelPolicy{
		Public:                       false,
		AllowDeviceSelfSet:           false,
		AllowEmulator:                true,
		AllowDev:                     true,
		DisableAutoUpdateUnderNative: true,
		DisableAutoUpdateToMajor:     true,
		IOS:                          true,
		Android:                      true,
	}
}

// ChannelPolicyPatch is a partial policy as supplied by an admin request.
// Nil fields leave the base value untouched.
type ChannelPolicyPatch struct {
	Public                       *bool `json:"public,omitempty"`
	AllowDeviceSelfSet           *bool `json:"allow_device_self_set,omitempty"`
	AllowEmulator                *bool `json:"allow_emulator,omitempty"`
	AllowDev                     *bool `json:"allow_dev,omitempty"`
	DisableAutoUpdateUnderNative *bool `json:"disableAutoUpdateUnderNative,omitempty"`
	DisableAutoUpdateToMajor     *bool `json:"disableAutoUpdateToMajor,omitempty"`
	IOS                          *bool `json:"ios,omitempty"`
	Android                      *bool `json:"android,omitempty"`
}

func (p ChannelPolicyPatch) Apply(base ChannelPolicy) ChannelPolicy {
	apply := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&base.Public, p.Public)
	apply(&base.AllowDeviceSelfSet, p.AllowDeviceSelfSet)
	apply(&base.AllowEmulator, p.AllowEmulator)
	apply(&base.AllowDev, p.AllowDev)
	apply(&base.DisableAutoUpdateUnderNative, p.DisableAutoUpdateUnderNative)
	apply(&base.DisableAutoUpdateToMajor, p.DisableAutoUpdateToMajor)
	apply(&base.IOS, p.IOS)
	apply(&base.Android, p.Android)
	return base
}
