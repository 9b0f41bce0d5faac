package taxonomy

// Default is a seed entry for an empty registry.
type Default struct {
	Name        string
	Description string
}

// Defaults is the fixed starter list inserted by SeedDefaults when the
// registry is empty.
var Defaults = []Default{
	{"Academic", "Scholarly articles, research papers, and academic publications"},
	{"Business", "Business documents, case studies, and professional reports"},
	{"Creative Writing", "Fiction, poetry, and creative non-fiction"},
	{"Technical", "Technical documentation, manuals, and guides"},
	{"Legal", "Legal documents, contracts, and agreements"},
	{"Medical", "Medical research, health documents, and patient information"},
	{"Educational", "Educational materials, lesson plans, and learning resources"},
	{"News", "News articles, journalistic pieces, and current events"},
	{"Personal", "Personal documents, letters, and journals"},
	{"Reference", "Reference materials, encyclopedic content, and guides"},
	{"Science", "Scientific papers, research, and publications"},
	{"Social", "Social media content, blog posts, and online discussions"},
	{"Other", "Documents that don't fit into other categories"},
}
