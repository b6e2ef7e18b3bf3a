// Package signatures holds the static lookup tables used by the probes:
// candidate admin and sensitive paths, technology fingerprints, the
// security-header checklist and the user-agent pool.
package signatures

// Signature names a technology and the body substrings that reveal it.
// Patterns are matched case-insensitively; order matters only in that the
// first matching pattern wins.
type Signature struct {
	Name     string
	Patterns []string
}

// AdminPaths are common administrative entry points.
var AdminPaths = []string{
	"/admin",
	"/administrator",
	"/wp-admin",
	"/dashboard",
	"/admin/login.php",
	"/admin/index.php",
	"/manager",
	"/webadmin",
	"/adminpanel",
	"/control",
	"/member",
	"/backend",
	"/manage",
	"/login",
	"/adm",
	"/panel",
	"/admin-panel",
	"/cp",
	"/cpanel",
	"/portal",
	"/admin-login",
	"/moderator",
	"/webmaster",
	"/admin-area",
}

// VulnerablePaths are files and directories that commonly leak
// configuration, backups or debug output.
var VulnerablePaths = []string{
	"/config",
	"/.env",
	"/.git",
	"/backup",
	"/db",
	"/debug",
	"/api",
	"/log",
	"/logs",
	"/test",
	"/install",
	"/setup",
	"/conf",
	"/sql",
	"/phpinfo.php",
	"/info.php",
	"/server-status",
	"/server-info",
	"/wp-config.php.bak",
	"/config.php.bak",
	"/database.sql",
	"/backup.sql",
	"/error.log",
	"/debug.log",
	"/robots.txt",
	"/sitemap.xml",
	"/.htaccess",
}

// Technologies is the fingerprint table, reported in this order.
var Technologies = []Signature{
	{Name: "WordPress", Patterns: []string{"wp-content", "wp-includes", "wordpress"}},
	{Name: "Joomla", Patterns: []string{"com_content", "joomla", "/administrator"}},
	{Name: "Drupal", Patterns: []string{"drupal", "sites/all", "/node/"}},
	{Name: "Laravel", Patterns: []string{"laravel", "/vendor/laravel"}},
	{Name: "Angular", Patterns: []string{"ng-app", "angular.js", "angular.min.js"}},
	{Name: "React", Patterns: []string{"react.js", "react-dom.js", "react.min.js"}},
	{Name: "Vue", Patterns: []string{"vue.js", "vue.min.js"}},
	{Name: "Bootstrap", Patterns: []string{"bootstrap.css", "bootstrap.min.css"}},
	{Name: "jQuery", Patterns: []string{"jquery.js", "jquery.min.js"}},
	{Name: "PHP", Patterns: []string{".php"}},
	{Name: "ASP.NET", Patterns: []string{".aspx", ".asp"}},
	{Name: "Node.js", Patterns: []string{"node_modules"}},
}

// SecurityHeaders is the checklist of response headers whose presence is
// reported. Presence says nothing about the header value being sound.
var SecurityHeaders = []string{
	"Content-Security-Policy",
	"Strict-Transport-Security",
	"X-Content-Type-Options",
	"X-Frame-Options",
	"X-XSS-Protection",
	"Referrer-Policy",
	"Feature-Policy",
	"Permissions-Policy",
}

// UserAgents is the pool sampled when user-agent randomization is on.
var UserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.1 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:89.0) Gecko/20100101 Firefox/89.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.114 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36 Edg/91.0.864.59",
}
