package main

// Project is one card in the projects section.
type Project struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	GitHub       string   `json:"github"`
	Live         string   `json:"live"`
}

// SkillCategory groups skills under a heading.
type SkillCategory struct {
	Category string   `json:"category"`
	Items    []string `json:"items"`
}

// SocialLink is a profile link shown in the hero and footer.
type SocialLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// Sections lists the page anchors in scroll order.
var Sections = []string{"home", "about", "projects", "skills", "contact"}

var (
	OwnerName = "Rahul"

	Tagline = `Full-stack developer building fast, accessible web experiences.`

	AboutMe = `I love building software that is both useful and fun, and I am always curious about how things
	work behind the scenes. Most of my projects start with a simple idea and turn into a chance to learn
	something new, whether it is a different language, a new tool, or a tricky problem worth solving.`

	Projects = []Project{
		{
			Title:        "E-commerce Platform",
			Description:  "A full-stack e-commerce platform with React, Node.js, and MongoDB",
			Technologies: []string{"React", "Node.js", "MongoDB", "Express"},
			GitHub:       "https://rahuldoty.github.io/SenoopsyMerch",
			Live:         "https://rahuldoty.github.io/SenoopsyMerch",
		},
		{
			Title:        "Task Management App",
			Description:  "A real-time task management application with authentication",
			Technologies: []string{"React", "Firebase", "Tailwind CSS"},
			GitHub:       "https://github.com/yourusername/task-manager",
			Live:         "https://task-manager-demo.com",
		},
		{
			Title:        "Portfolio Website",
			Description:  "A responsive portfolio website with a Go backend relaying the contact form",
			Technologies: []string{"Go", "Gin", "HTMX", "Tailwind CSS"},
			GitHub:       "https://github.com/yourusername/portfolio",
			Live:         "https://portfolio-demo.com",
		},
	}

	Skills = []SkillCategory{
		{Category: "Frontend", Items: []string{"React", "Next.js", "TypeScript", "Tailwind CSS", "Redux"}},
		{Category: "Backend", Items: []string{"Node.js", "Express", "MongoDB", "PostgreSQL", "RESTful APIs"}},
		{Category: "Tools & Others", Items: []string{"Git", "Docker", "AWS", "CI/CD", "Agile/Scrum"}},
	}

	Socials = []SocialLink{
		{Platform: "github", URL: "https://github.com/rahuldoty"},
		{Platform: "linkedin", URL: "https://linkedin.com/in/rahuly"},
		{Platform: "twitter", URL: "https://twitter.com/rahuldoty"},
	}

	// ResumePath is served by GET /resume as ResumeFilename.
	ResumePath     = "./static/resume.pdf"
	ResumeFilename = "RahulResume.pdf"
)
