package constants

// AlwaysVisible is the module-permission sentinel for menu entries and routes
// that every authenticated user may see.
const AlwaysVisible = "always_visible"

// Permission lists the module-permission keys the platform grants to users.
var Permission = struct {
	Licenses        string
	ManageLicenses  string
	Structure       string
	Users           string
	ManageUsers     string
	Roles           string
	Modules         string
	Employees       string
	ManageEmployees string
	Attendance      string
	Reports         string
	Administration  string
	SystemConfig    string
}{
	Licenses:        "licencias",
	ManageLicenses:  "gestion_licencias",
	Structure:       "estructura",
	Users:           "usuarios",
	ManageUsers:     "gestion_usuarios",
	Roles:           "roles",
	Modules:         "modulos",
	Employees:       "empleados",
	ManageEmployees: "gestion_empleados",
	Attendance:      "asistencia",
	Reports:         "reportes",
	Administration:  "administracion",
	SystemConfig:    "configuracion_sistema",
}

// CacheKey names the entries held by the catalog cache.
var CacheKey = struct {
	Modules string
	Roles   string
}{
	Modules: "catalog:modules",
	Roles:   "catalog:roles",
}

// AuditAction names the audit events published after mutations.
var AuditAction = struct {
	Created string
	Updated string
	Deleted string
}{
	Created: "created",
	Updated: "updated",
	Deleted: "deleted",
}
