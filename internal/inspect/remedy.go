package inspect

const (
	remedyLicense   = "The License tag must use approved license abbreviations or names joined with 'and' or 'or', with balanced parentheses."
	remedyLicenseDB = "Set vendor.licensedb to a license database present under <vendor_data_dir>/licenses/."
	remedyVendor    = "Change the Vendor tag in the spec file or set settings.vendor in the configuration."
	remedyBuildHost = "Build the package on a host within one of the settings.buildhost_subdomain domains."
	remedyBadWords  = "Remove the unprofessional language from the spec file."
	remedyKmodParm  = "Kernel module parameters were removed within the same package version. Restore them or confirm the removal is intentional."
	remedyKmodDeps  = "Kernel module dependencies changed within the same package version. Confirm the module still loads where it is deployed."
	remedyKmodAlias = "A device alias is no longer claimed by this module, so the hardware may no longer bind to any driver."
	remedyUpstream  = "Upstream sources changed without a version change. Make sure the archives come from upstream and bump the version when appropriate."
	remedySources   = "Declare the upstream archives in the spec file with SourceN: tags."
	remedyChangelog = "Add a new %changelog entry describing the build and do not rewrite existing entries."
)
