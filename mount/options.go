package mount

type MountOptions struct {
	ReadOnly bool // Whether the mount is read-only.
	Nesting  bool // Whether the mount allows for nested mountpoints.
}

type MountOption func(*MountOptions) error

func newDefaultMountOptions() *MountOptions {
	return &MountOptions{
		ReadOnly: false,
		Nesting:  true,
	}
}

// DisableNesting denies any further mountpoints below this mount.
func DisableNesting() MountOption {
	return func(mo *MountOptions) error {
		mo.Nesting = false
		return nil
	}
}

// AsReadOnly specifies, if this mount is in a readonly state.
func AsReadOnly() MountOption {
	return func(mo *MountOptions) error {
		mo.ReadOnly = true
		return nil
	}
}
