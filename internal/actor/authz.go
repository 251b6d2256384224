package actor

// Permission tags for the content domain.
const (
	PermPostsView    = "posts.view"
	PermPostsEdit    = "posts.edit"
	PermPostsPublish = "posts.publish"
	PermPostsDelete  = "posts.delete"

	PermSponsorshipsView = "sponsorships.view"
	PermSponsorshipsEdit = "sponsorships.edit"
)

// Permission tags for the catalog domain.
const (
	PermAccommodationsView = "accommodations.view"
	PermAccommodationsEdit = "accommodations.edit"
)

// Permission tags for the core platform.
const (
	PermUsersView = "users.view"
	PermUsersEdit = "users.edit"

	PermRolesView = "roles.view"
	PermRolesEdit = "roles.edit"
)

// ContentScopes lists all permissions related to the content domain.
func ContentScopes() []string {
	return []string{
		PermPostsView,
		PermPostsEdit,
		PermPostsPublish,
		PermPostsDelete,
		PermSponsorshipsView,
		PermSponsorshipsEdit,
	}
}

// CatalogScopes lists all permissions related to the catalog domain.
func CatalogScopes() []string {
	return []string{
		PermAccommodationsView,
		PermAccommodationsEdit,
	}
}

// CoreScopes lists all permissions related to the core platform.
func CoreScopes() []string {
	return []string{
		PermUsersView,
		PermUsersEdit,
		PermRolesView,
		PermRolesEdit,
	}
}
