package verifyversion

// BuildVersion is this build's own version, resolved into a Gate by
// internal/verifypipeline on every Run. Release builds overwrite it with
// -ldflags "-X .../verifyversion.BuildVersion=1.3.0"; unset, it names the
// most recent grammar feature this source tree actually implements.
var BuildVersion = "1.2.0"
