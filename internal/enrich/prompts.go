package enrich

import "fmt"

// Every prompt asks for both languages in one completion, split by the
// section markers ParseBilingual understands.

func coverLetterPrompt(profile, jobSummary string) string {
	return fmt.Sprintf(`You are a career assistant. Write a short, professional cover letter for the candidate below applying to the job below.

Candidate profile:
%s

Job posting:
%s

Answer in two sections. Start the first with the exact line "### English Version" and write the letter in English. Start the second with the exact line "### Version Française" and write the same letter in French. Do not add anything outside the two sections.`, profile, jobSummary)
}

func missingSkillsPrompt(profile, jobSummary string) string {
	return fmt.Sprintf(`You are a career assistant. Compare the candidate profile and the job posting below, and list the skills the job requires that the candidate does not show.

Candidate profile:
%s

Job posting:
%s

Answer in two sections. Start the first with the exact line "### English Version" and list the missing skills in English as short bullet points. Start the second with the exact line "### Version Française" and give the same list in French. Do not add anything outside the two sections.`, profile, jobSummary)
}

func matchingSkillsPrompt(profile, jobSummary string) string {
	return fmt.Sprintf(`You are a career assistant. Compare the candidate profile and the job posting below, and list the skills the candidate shows that match what the job requires.

Candidate profile:
%s

Job posting:
%s

Answer in two sections. Start the first with the exact line "### English Version" and list the matching skills in English as short bullet points. Start the second with the exact line "### Version Française" and give the same list in French. Do not add anything outside the two sections.`, profile, jobSummary)
}
