package aggregate

import "slices"

// UserRole represents the role of a marketplace account
type UserRole string

const (
	RoleCustomer   UserRole = "CUSTOMER"
	RoleHotelOwner UserRole = "HOTEL_OWNER"
	RoleCarOwner   UserRole = "CAR_OWNER"
	RoleTourGuide  UserRole = "TOUR_GUIDE"
	RoleAdmin      UserRole = "ADMIN"
	RoleSuperAdmin UserRole = "SUPER_ADMIN"
)

// UserRoles returns every known role in display order
func UserRoles() []UserRole {
	return []UserRole{RoleCustomer, RoleHotelOwner, RoleCarOwner, RoleTourGuide, RoleAdmin, RoleSuperAdmin}
}

// IsValid checks if the role is valid
func (r UserRole) IsValid() bool {
	return slices.Contains(UserRoles(), r)
}

// IsAdmin reports whether the role may read back-office statistics
func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// IsServiceProvider reports whether the role owns listings
func (r UserRole) IsServiceProvider() bool {
	return r == RoleHotelOwner || r == RoleCarOwner || r == RoleTourGuide
}

// ServiceProviderRoles lists the provider roles in display order
func ServiceProviderRoles() []UserRole {
	var roles []UserRole
	for _, r := range UserRoles() {
		if r.IsServiceProvider() {
			roles = append(roles, r)
		}
	}
	return roles
}

// UserStatus represents the lifecycle state of an account
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusInactive  UserStatus = "INACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)
